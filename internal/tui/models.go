package tui

type View int

const (
	ViewCards View = iota
	ViewDetail
)

func (v View) String() string {
	switch v {
	case ViewCards:
		return "cards"
	case ViewDetail:
		return "detail"
	default:
		return "unknown"
	}
}
