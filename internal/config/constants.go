package config

// Config file names looked up by FindConfig, in order.
var ConfigFileNames = []string{"funski.yaml", "funski.yml"}

// REPL and history locations, relative to the user's home directory.
const (
	ReplHistoryFile = ".funski_history"
	DataDir         = ".funski"
	HistoryDBFile   = "history.db"
	HistoryYAMLFile = "history.yaml"
)

// DefaultStepLimit bounds bulk evaluation of a possibly divergent term.
const DefaultStepLimit = 1000

const DefaultServerAddr = "127.0.0.1:7468"

// Display styles
const (
	StyleLazyK      = "lazy_k"
	StyleECMAScript = "ecmascript"
)

// History drivers
const (
	DriverSQLite = "sqlite"
	DriverYAML   = "yaml"
	DriverMemory = "memory"
)

// Result aliases. LastResultAlias always names the latest result; the
// numbered ones form a ring over the previous results.
const LastResultAlias = "_"

var ResultAliases = []string{"_0", "_1", "_2", "_3", "_4", "_5", "_6", "_7", "_8", "_9"}
