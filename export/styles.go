package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

const (
	borderThin   = 1
	borderMedium = 2
)

type templateStyles struct {
	legend      int
	instruction int
	weeklyTest  int
	header      int
	data        int
	tuesday     int
	weeklyPlain int
}

type styleDef struct {
	dst   *int
	style excelize.Style
}

func border(topBottom int) []excelize.Border {
	return []excelize.Border{
		{Type: "left", Color: "000000", Style: borderThin},
		{Type: "right", Color: "000000", Style: borderThin},
		{Type: "top", Color: "000000", Style: topBottom},
		{Type: "bottom", Color: "000000", Style: topBottom},
	}
}

func solid(color string) excelize.Fill {
	return excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{color}}
}

func newTemplateStyles(f *excelize.File) (templateStyles, error) {
	var st templateStyles
	centered := &excelize.Alignment{Horizontal: "center", Vertical: "center"}
	centeredWrap := &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true}

	defs := []styleDef{
		{&st.legend, excelize.Style{
			Font:      &excelize.Font{Bold: true, Size: 11},
			Alignment: &excelize.Alignment{Horizontal: "left", Vertical: "center"},
			Border:    border(borderThin),
		}},
		{&st.instruction, excelize.Style{
			Font:      &excelize.Font{Bold: true, Size: 10},
			Alignment: &excelize.Alignment{Horizontal: "left", Vertical: "center", WrapText: true},
			Border:    border(borderThin),
		}},
		{&st.weeklyTest, excelize.Style{
			Font:      &excelize.Font{Bold: true, Size: 10, Color: "000000"},
			Fill:      solid(weeklyHighlight),
			Alignment: centeredWrap,
			Border:    border(borderThin),
		}},
		{&st.header, excelize.Style{
			Font:      &excelize.Font{Bold: true, Size: 10},
			Fill:      solid(headerFill),
			Alignment: centeredWrap,
			Border:    border(borderMedium),
		}},
		{&st.data, excelize.Style{
			Font:      &excelize.Font{Size: 10},
			Alignment: centered,
			Border:    border(borderThin),
		}},
		// Tuesday rows are bold and yellow across, weekly columns included.
		{&st.tuesday, excelize.Style{
			Font:      &excelize.Font{Bold: true, Size: 10},
			Fill:      solid(weeklyHighlight),
			Alignment: centered,
			Border:    border(borderThin),
		}},
		{&st.weeklyPlain, excelize.Style{
			Font:      &excelize.Font{Size: 10},
			Fill:      solid(weeklyPlain),
			Alignment: centered,
			Border:    border(borderThin),
		}},
	}

	for _, d := range defs {
		id, err := f.NewStyle(&d.style)
		if err != nil {
			return templateStyles{}, fmt.Errorf("failed to create cell style: %w", err)
		}
		*d.dst = id
	}
	return st, nil
}
