package domain

// State is the full persisted picture of the board set: every board's ordered
// task list plus the origin table recording where each completed task lived
// before it entered the done board.
type State struct {
	Boards  map[Board][]Task `json:"boards"`
	Origins map[string]Board `json:"origins"`
}

// EmptyState returns a State with all three boards present and empty.
func EmptyState() State {
	boards := make(map[Board][]Task, len(Boards()))
	for _, b := range Boards() {
		boards[b] = []Task{}
	}
	return State{Boards: boards, Origins: map[string]Board{}}
}

// Clone returns a deep copy safe to hand across goroutine boundaries.
func (s State) Clone() State {
	out := State{
		Boards:  make(map[Board][]Task, len(s.Boards)),
		Origins: make(map[string]Board, len(s.Origins)),
	}
	for b, tasks := range s.Boards {
		list := make([]Task, len(tasks))
		copy(list, tasks)
		for i := range list {
			if len(list[i].Tags) > 0 {
				tags := make([]string, len(list[i].Tags))
				copy(tags, list[i].Tags)
				list[i].Tags = tags
			}
		}
		out.Boards[b] = list
	}
	for id, b := range s.Origins {
		out.Origins[id] = b
	}
	return out
}
