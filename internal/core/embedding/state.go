package embedding

// Status はプロバイダ選択の状態
type Status int

const (
	// StatusUnselected は起動直後の未選択状態
	StatusUnselected Status = iota
	// StatusActive はいずれかのプロバイダが選択済み
	StatusActive
	// StatusUnavailable は利用可能なプロバイダがない
	StatusUnavailable
)

func (s Status) String() string {
	switch s {
	case StatusActive:
		return "active"
	case StatusUnavailable:
		return "unavailable"
	default:
		return "unselected"
	}
}

// State はプロセス全体で一度だけ決まるプロバイダ選択結果
type State struct {
	Status    Status
	Kind      Kind
	Dimension int
}

// Active は選択済みの State を返す
func Active(kind Kind, dimension int) State {
	return State{Status: StatusActive, Kind: kind, Dimension: dimension}
}

// Unavailable はプロバイダなしの State を返す
func Unavailable() State {
	return State{Status: StatusUnavailable}
}

// IsActive は選択済みかどうかを返す
func (s State) IsActive() bool {
	return s.Status == StatusActive
}
