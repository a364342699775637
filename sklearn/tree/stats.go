package tree

// TreeStats summarises the shape of a tree.
type TreeStats struct {
	Depth        int `json:"depth"`
	Leaves       int `json:"leaves"`
	ActiveLeaves int `json:"active_leaves"`
	SplitNodes   int `json:"split_nodes"`
	AbsentSlots  int `json:"absent_slots"`
}

// Measure walks the tree rooted at root.
func Measure(root Node) TreeStats {
	var s TreeStats
	var walk func(n Node)
	walk = func(n Node) {
		if n.Depth() > s.Depth {
			s.Depth = n.Depth()
		}
		switch v := n.(type) {
		case *SplitNode:
			s.SplitNodes++
			for _, c := range v.children {
				if c == nil {
					s.AbsentSlots++
					continue
				}
				walk(c)
			}
		case LearningNode:
			s.Leaves++
			if v.IsActive() {
				s.ActiveLeaves++
			}
		}
	}
	if root != nil {
		walk(root)
	}
	return s
}

// Stats returns the shape of the canonical tree.
func (ht *HoeffdingTreeClassifier) Stats() TreeStats {
	ht.mu.RLock()
	defer ht.mu.RUnlock()
	return Measure(ht.root)
}
