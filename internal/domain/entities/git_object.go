package entities

const (
	ModeFile       = "100644"
	ModeExecutable = "100755"

	TypeBlob = "blob"
	TypeTree = "tree"
)

// GitObject is an entry of a git tree.
type GitObject struct {
	Path string
	Type string
	SHA  string
	Mode string
}

// GitTree is a directory listing at one tree object.
type GitTree struct {
	SHA     string
	URL     string
	Entries []GitObject
}

// GitCommit is the part of a commit object needed to walk its tree.
type GitCommit struct {
	SHA     string
	TreeSHA string
	Message string
}
