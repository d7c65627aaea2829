// Package export writes clean snapshots to a spreadsheet workbook.
package export

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/fgo-harvest/internal/model"
)

// Sheet names.
const (
	SheetServants = "Servants"
	SheetSkills   = "Skills"
	SheetGrowth   = "Skill Growth"
)

// WriteWorkbook writes servants and skills to an xlsx file at path. Either
// slice may be empty; its sheet then holds only the header row.
func WriteWorkbook(path string, servants []model.CleanServant, skills []model.CleanSkill) error {
	f := xlsx.NewFile()

	if err := writeServants(f, servants); err != nil {
		return err
	}
	if err := writeSkills(f, skills); err != nil {
		return err
	}

	if err := f.Save(path); err != nil {
		return eris.Wrapf(err, "export: save %s", path)
	}
	return nil
}

func writeServants(f *xlsx.File, servants []model.CleanServant) error {
	sheet, err := f.AddSheet(SheetServants)
	if err != nil {
		return eris.Wrap(err, "export: add servants sheet")
	}
	header(sheet, "ID", "Name", "Class", "Release", "Rating", "Max Level", "Max ATK", "Max HP")

	for _, s := range servants {
		row := sheet.AddRow()
		row.AddCell().SetInt(s.ServantID)
		row.AddCell().SetString(s.Name)
		row.AddCell().SetString(s.Class)
		row.AddCell().SetString(s.Release)
		row.AddCell().SetString(s.Rating)
		row.AddCell().SetInt(max(len(s.Stats.Attack), len(s.Stats.HP)))
		intOrBlank(row.AddCell(), last(s.Stats.Attack))
		intOrBlank(row.AddCell(), last(s.Stats.HP))
	}
	return nil
}

func writeSkills(f *xlsx.File, skills []model.CleanSkill) error {
	sheet, err := f.AddSheet(SheetSkills)
	if err != nil {
		return eris.Wrap(err, "export: add skills sheet")
	}
	header(sheet, "Name", "Type", "Category", "Enhancement", "Effects")

	growth, err := f.AddSheet(SheetGrowth)
	if err != nil {
		return eris.Wrap(err, "export: add growth sheet")
	}
	header(growth, "Skill", "Level", "Effect", "Cooldown")

	for _, s := range skills {
		row := sheet.AddRow()
		row.AddCell().SetString(s.Name)
		row.AddCell().SetString(s.Meta.Type)
		row.AddCell().SetString(s.Meta.Category)
		row.AddCell().SetString(s.Leveling.Enhancement)
		row.AddCell().SetString(strings.Join(s.Effects, "\n"))

		for _, g := range s.Leveling.Growth {
			gr := growth.AddRow()
			gr.AddCell().SetString(s.Name)
			gr.AddCell().SetString(g.Level)
			gr.AddCell().SetString(g.Effect)
			gr.AddCell().SetString(g.Cooldown)
		}
	}
	return nil
}

func header(sheet *xlsx.Sheet, names ...string) {
	row := sheet.AddRow()
	for _, n := range names {
		row.AddCell().SetString(n)
	}
}

// last returns the highest-level value that is present.
func last(values []*int) *int {
	for i := len(values) - 1; i >= 0; i-- {
		if values[i] != nil {
			return values[i]
		}
	}
	return nil
}

func intOrBlank(c *xlsx.Cell, v *int) {
	if v == nil {
		c.SetString("")
		return
	}
	c.SetInt(*v)
}
