package keyword

// DefaultTerms is the built-in high-risk vocabulary.
var DefaultTerms = []string{
	"hack",
	"virus",
	"attack",
	"unauthorized",
	"illegal",
	"breach",
	"exploit",
	"steal",
	"malware",
	"phishing",
}
