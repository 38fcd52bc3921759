// Package exhibit holds the static domain data of the guide: the narration
// personas visitors are matched to, and the relic catalog of the 鲜衣怒马少年时
// exhibition.
package exhibit

// Persona is an audience narration style. Every relic narration exists in
// one variant per persona; the intake quiz assigns one to each visitor.
type Persona string

const (
	PersonaFacilitator  Persona = "促进型"
	PersonaExplorer     Persona = "探索者"
	PersonaProfessional Persona = "专业研究者"
	PersonaInspiration  Persona = "灵感寻求者"
	PersonaExperience   Persona = "体验追寻者"
)

// Personas lists every narration persona in presentation order.
func Personas() []Persona {
	return []Persona{
		PersonaFacilitator,
		PersonaExplorer,
		PersonaProfessional,
		PersonaInspiration,
		PersonaExperience,
	}
}

// ValidPersona reports whether p names a known persona.
func ValidPersona(p Persona) bool {
	switch p {
	case PersonaFacilitator, PersonaExplorer, PersonaProfessional,
		PersonaInspiration, PersonaExperience:
		return true
	}
	return false
}

// Relic is one exhibited artwork.
type Relic struct {
	ID          string
	Title       string
	Dynasty     string
	Author      string
	Description string
}

// relics is the exhibition catalog, indexed by display order.
var relics = []Relic{
	{ID: "relic1", Title: "虢国夫人游春图", Dynasty: "唐", Author: "张萱", Description: "描绘虢国夫人及其眷从盛装出游的场景。"},
	{ID: "relic2", Title: "五牛图", Dynasty: "唐", Author: "韩滉", Description: "现存最早的纸本中国画，五牛形神各异。"},
	{ID: "relic3", Title: "照夜白图", Dynasty: "唐", Author: "韩幹", Description: "唐玄宗坐骑照夜白，昂首嘶鸣欲脱缰而去。"},
	{ID: "relic4", Title: "簪花仕女图", Dynasty: "唐", Author: "周昉", Description: "贵族仕女赏花游园，衣饰华丽，设色浓艳。"},
	{ID: "relic5", Title: "牧马图", Dynasty: "唐", Author: "韩幹", Description: "黑白二马与奚官，笔致简练而体态雄骏。"},
	{ID: "relic6", Title: "百马图", Dynasty: "元", Author: "佚名", Description: "长卷百马，洗马、驯马、放牧诸态毕现。"},
	{ID: "relic7", Title: "浴马图", Dynasty: "元", Author: "赵孟頫", Description: "奚官浴马于溪，人马相得，设色清润。"},
}

// Relics returns the full catalog in display order.
func Relics() []Relic {
	out := make([]Relic, len(relics))
	copy(out, relics)
	return out
}

// RelicByID looks a relic up by its id.
func RelicByID(id string) (Relic, bool) {
	for _, r := range relics {
		if r.ID == id {
			return r, true
		}
	}
	return Relic{}, false
}
