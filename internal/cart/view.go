package cart

import "strconv"

// View models are pure functions of the cart. Rendering them to markup
// is the front-end's concern.

const badgeCap = 99

type Badge struct {
	Count   int    `json:"count"`
	Label   string `json:"label"`
	Visible bool   `json:"visible"`
}

// BadgeFor caps the display label at "99+" while keeping the exact count.
func BadgeFor(c Cart) Badge {
	n := c.Count()
	label := strconv.Itoa(n)
	if n > badgeCap {
		label = "99+"
	}
	return Badge{Count: n, Label: label, Visible: n > 0}
}

type SidebarLine struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Qty       int     `json:"qty"`
	LineTotal float64 `json:"line_total"`
}

type Sidebar struct {
	Lines []SidebarLine `json:"lines"`
	Total float64       `json:"total"`
	Empty bool          `json:"empty"`
}

func SidebarFor(c Cart) Sidebar {
	lines := make([]SidebarLine, 0, len(c))
	for _, it := range c {
		lines = append(lines, SidebarLine{
			ID:        it.ID,
			Name:      it.Name,
			Price:     it.Price,
			Qty:       it.Qty,
			LineTotal: it.Price * float64(it.Qty),
		})
	}
	return Sidebar{Lines: lines, Total: c.Total(), Empty: len(lines) == 0}
}
