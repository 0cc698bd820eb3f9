package assign

// Distribution is a named difficulty mix for one generated question set.
type Distribution struct {
	Label  string `json:"label"`
	Easy   int    `json:"easy"`
	Medium int    `json:"medium"`
	Hard   int    `json:"hard"`
}

// Total returns the number of questions the distribution requires.
func (d Distribution) Total() int { return d.Easy + d.Medium + d.Hard }

// The recognized distribution patterns.
var (
	TwoEasy        = Distribution{Label: "2 Easy", Easy: 2}
	EasyPlusMedium = Distribution{Label: "1 Easy, 1 Medium", Easy: 1, Medium: 1}
	OneHard        = Distribution{Label: "1 Hard", Hard: 1}
)

// ValidDistributions returns the candidate patterns for the given pool
// sizes. Each activation rule is evaluated on its own and appends its
// patterns independently, so overlapping rules can push the same pattern
// more than once; the duplicates count separately when the candidate list
// is weighted, raising that pattern's effective draw probability. An empty
// result means the pool cannot support any pattern.
func ValidDistributions(easy, medium, hard int) []Distribution {
	var out []Distribution
	if easy >= 2 && medium == 0 && hard == 0 {
		out = append(out, TwoEasy)
	}
	if easy >= 1 && medium >= 1 && hard == 0 {
		out = append(out, EasyPlusMedium)
	}
	if easy == 0 && medium > 1 && hard > 1 {
		out = append(out, OneHard)
	}
	if easy >= 2 && medium >= 1 && hard == 0 {
		out = append(out, TwoEasy, EasyPlusMedium)
	}
	if easy >= 2 && medium >= 1 && hard >= 1 {
		out = append(out, TwoEasy, EasyPlusMedium, OneHard)
	}
	return out
}
