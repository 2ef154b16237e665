package resolve

// Stream names stored in the stream fact.
const (
	StreamMPC      = "MPC"
	StreamBiPC     = "BIPC"
	StreamCommerce = "COMMERCE"
)

// StreamCareerPaths maps an upper-cased stream to the careers it leads to.
var StreamCareerPaths = map[string][]string{
	StreamMPC:      {"engineering", "architecture", "physics research"},
	StreamBiPC:     {"medicine", "biotechnology", "nursing"},
	StreamCommerce: {"accounting", "finance", "business management"},
}

// MajorHigherStudy maps a lower-cased major to further-study options.
var MajorHigherStudy = map[string][]string{
	"computer science":       {"M.Tech in Computer Science", "MS in Computer Science", "MBA in Technology Management"},
	"mechanical engineering": {"M.Tech in Mechanical Engineering", "MS in Mechanical Engineering", "MBA"},
	"biology":                {"M.Sc in Biology", "PhD in Biological Sciences", "MBA in Biotechnology Management"},
	"mba":                    {"PhD in Management", "Executive MBA", "Specialized Certifications in Finance or Marketing"},
}

// Filler strings used when a fact is absent.
const (
	DefaultName        = "friend"
	DefaultStage       = ""
	DefaultStream      = "your stream"
	DefaultMajor       = "your major"
	DefaultYear        = "your year"
	DefaultField       = "your field"
	DefaultCareerPath  = "various fields"
	DefaultHigherStudy = "a Master's degree"
)

// Replies produced without a catalog hit.
const (
	UnknownIntentReply = "I’m not sure how to help with that. Could you tell me more or ask something else?"
	MissingIntentReply = "I’m not sure how to respond to that."
)
