package rubric

import "sort"

// Well-known rubric keys.
const (
	KeySimpleInterrupted = "Suturing: Simple Interrupted"
	KeyVerticalMattress  = "Suturing: Vertical Mattress"
	KeySubcuticular      = "Suturing: Subcuticular"
	KeyAutoDetect        = "Suturing: Auto-Detect"
	KeyChestTube         = "Chest Tube Insertion VOP"
	KeySPEncounter       = "Standardized Patient Encounter"
)

// Store provides lookup over the immutable rubric set.
type Store struct {
	rubrics map[string]*Rubric
	order   []string
}

// Builtin returns the store of built-in rubric definitions.
func Builtin() *Store {
	s := &Store{rubrics: make(map[string]*Rubric)}
	for i := range builtinRubrics {
		r := &builtinRubrics[i]
		s.rubrics[r.Key] = r
		s.order = append(s.order, r.Key)
	}
	return s
}

// Get looks up a rubric by key.
func (s *Store) Get(key string) (*Rubric, bool) {
	r, ok := s.rubrics[key]
	return r, ok
}

// Keys returns the rubric keys in definition order.
func (s *Store) Keys() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Categories returns the category names in sorted order.
func (s *Store) Categories() []string {
	seen := make(map[string]bool)
	var cats []string
	for _, key := range s.order {
		cat := s.rubrics[key].Category
		if !seen[cat] {
			seen[cat] = true
			cats = append(cats, cat)
		}
	}
	sort.Strings(cats)
	return cats
}

// ByCategory returns the rubrics in one category, in definition order.
func (s *Store) ByCategory(category string) []*Rubric {
	var out []*Rubric
	for _, key := range s.order {
		if r := s.rubrics[key]; r.Category == category {
			out = append(out, r)
		}
	}
	return out
}

// ForVariant resolves a detected suturing variant (e.g. "Simple Interrupted")
// to its concrete rubric. Unknown variants return false and the caller keeps
// the generic rubric it already holds.
func (s *Store) ForVariant(variant string) (*Rubric, bool) {
	return s.Get("Suturing: " + variant)
}

var builtinRubrics = []Rubric{
	{
		Key:         KeySimpleInterrupted,
		Title:       "Simple Interrupted Suture Assessment",
		Category:    "Suturing",
		Subcategory: "Simple Interrupted",
		Items: []Criterion{
			{"Perpendicular needle passes", Likert, "Needle enters/exits at ~90°, symmetric bites."},
			{"Gentle tissue handling", Likert, "Use of forceps without crushing or repeated grasping. Single clean grasp per edge, no trauma."},
			{"Square, secure knots", Likert, "Flat, square, properly tightened, not loose."},
			{"Appropriate tension", Likert, "Skin edges meet without squeezing or gaps. Edges just touch, no blanching or puckering."},
			{"Even spacing", Likert, "Distance between stitches. Each 0.5-1cm apart, uniform."},
			{"Dermal and epidermal apposition", Likert, "How well layers meet. Layers aligned; mild eversion fine but not required."},
			{"Economy of motion", Likert, "Efficiency during suturing. Hands stay close to field, minimal unnecessary motion."},
		},
	},
	{
		Key:         KeyVerticalMattress,
		Title:       "Vertical Mattress Suture Assessment",
		Category:    "Suturing",
		Subcategory: "Vertical Mattress",
		Items: []Criterion{
			{"Correct far-far and near-near", Likert, "Placement of deep and superficial bites. Deep supports wound, shallow closes skin."},
			{"Gentle tissue handling", Likert, "Avoiding rough handling. Single, light grasps per edge."},
			{"Square, secure knots", Likert, "Knot integrity. Flat, tight, not slipping."},
			{"Balanced deep/superficial tension", Likert, "Relationship between inner and outer tension. Deep supports wound, superficial not strangling tissue."},
			{"Even spacing", Likert, "Stitch intervals. Consistent, 0.5-1cm apart."},
			{"Proper eversion", Likert, "Skin edges slightly raised. Uniform ridge, no inversion."},
			{"Economy of motion", Likert, "Efficiency. Few wasted movements, steady rhythm."},
		},
	},
	{
		Key:         KeySubcuticular,
		Title:       "Subcuticular Suture Assessment",
		Category:    "Suturing",
		Subcategory: "Subcuticular",
		Items: []Criterion{
			{"Consistent dermal bites", Likert, "Depth and spacing of bites in continuous run. Smooth, even rhythm without irregular spacing."},
			{"Entry/exit symmetry", Likert, "How evenly left and right bites mirror. Same depth and offset each side."},
			{"No unintended surface breaches", Likert, "Whether suture stays beneath epidermis. Only start/finish exposed; no loops outside."},
			{"Gentle tissue handling", Likert, "Smooth needle driving and tension control. Controlled, atraumatic, no heavy pressure."},
			{"Square, secure knots", Likert, "Knot formation and concealment. Square, tight, hidden or buried."},
			{"Flat skin approximation", Likert, "Final cosmetic appearance. Smooth surface, no ridges or gaps."},
			{"Economy of motion", Likert, "Efficiency and organization. Continuous, confident workflow, few interruptions."},
		},
	},
	{
		Key:         KeyAutoDetect,
		Title:       "Suturing Assessment (Pattern Auto-Detected)",
		Category:    "Suturing",
		Subcategory: "Auto-Detect",
		AutoDetect:  true,
		Items: []Criterion{
			{"Perpendicular needle passes", Likert, "Needle enters/exits at ~90°, symmetric bites."},
			{"Gentle tissue handling", Likert, "Use of forceps without crushing or repeated grasping."},
			{"Square, secure knots", Likert, "Flat, square, properly tightened, not loose."},
			{"Appropriate tension", Likert, "Skin edges meet without squeezing or gaps."},
			{"Even spacing", Likert, "Distance between stitches. Each 0.5-1cm apart, uniform."},
			{"Economy of motion", Likert, "Efficiency during suturing. Hands stay close to field, minimal unnecessary motion."},
		},
	},
	{
		Key:      KeyChestTube,
		Title:    "VOP - Chest Tube Insertion",
		Category: "Procedures",
		Items: []Criterion{
			{"Selects appropriate site for incision - mid axillary", Binary, ""},
			{"Infiltrates local anesthetic at appropriate site", Binary, ""},
			{"2 cm transverse incision through skin", Binary, ""},
			{"Uses a Kelly to bluntly dissect down to chest wall", Binary, ""},
			{"Blunt dissection on top of rib one interspace higher than incision", Binary, ""},
			{"Dissects with gentle pressure through intercostals muscles, enters pleura", Binary, ""},
			{"Grasps tube with Kelly, carefully", Binary, ""},
			{"Advances chest tube past the last tube hole", Binary, ""},
			{"Secures chest tube with a suture", Binary, ""},
			{"Economy of Time and Motion", Likert, "Many unnecessary / disorganized movements (1) → Organized time / motion, some unnecessary movements (3) → Maximum economy of movement and efficiency (5)"},
			{"Final Rating / Demonstrates Proficiency", Binary, ""},
		},
	},
	{
		Key:      KeySPEncounter,
		Title:    "SP Communication Assessment",
		Category: "Communication",
		Items: []Criterion{
			{"Introduction & Role ID", Likert, "Clear introduction."},
			{"Open-ended questioning", Likert, "Starts broad before narrowing."},
			{"Empathy & Validation", Likert, "Acknowledges patient emotion."},
			{"No Medical Jargon", Likert, "Uses lay terms."},
			{"Closure & Teach-back", Likert, "Ensures patient understanding."},
		},
	},
}
