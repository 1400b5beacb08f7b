package session

// NoticeLevel classifies a side-channel message.
type NoticeLevel int

const (
	NoticeInfo NoticeLevel = iota
	NoticeError
)

// Notice is a user-facing message produced by side-channel work
// (persistence, reward submission). Best carries a loaded best score, if any.
type Notice struct {
	Level NoticeLevel
	Text  string
	Best  int
}

// IsError reports whether the notice describes a failure.
func (n Notice) IsError() bool {
	return n.Level == NoticeError
}
