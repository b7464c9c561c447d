package model

// State is everything japa persists: the profile, the per-day history and
// the active session, if any.
type State struct {
	Profile Profile
	History []DailyStats
	Session *Session
}

// Clone returns a deep copy safe to hand to another goroutine.
func (s State) Clone() State {
	out := State{Profile: s.Profile}
	out.Profile.PreferredLabels = append([]string(nil), s.Profile.PreferredLabels...)

	if s.History != nil {
		out.History = make([]DailyStats, len(s.History))
		for i, ds := range s.History {
			out.History[i] = ds
			if ds.LabelBreakdown != nil {
				m := make(map[string]int, len(ds.LabelBreakdown))
				for k, v := range ds.LabelBreakdown {
					m[k] = v
				}
				out.History[i].LabelBreakdown = m
			}
		}
	}

	if s.Session != nil {
		sess := *s.Session
		if s.Session.TargetCount != nil {
			t := *s.Session.TargetCount
			sess.TargetCount = &t
		}
		if s.Session.EndTime != nil {
			e := *s.Session.EndTime
			sess.EndTime = &e
		}
		out.Session = &sess
	}
	return out
}
