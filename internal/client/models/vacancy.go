package models

import (
	"fmt"
	"strings"

	"github.com/dmitrijs2005/oskolki/internal/common"
)

type Vacancy struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	SalaryMin   int    `json:"salaryMin"`
	SalaryMax   int    `json:"salaryMax"`
}

func (v Vacancy) Validate() error {
	if strings.TrimSpace(v.Title) == "" {
		return fmt.Errorf("%w: vacancy title is required", common.ErrValidation)
	}
	if v.SalaryMin < 0 || v.SalaryMax < 0 {
		return fmt.Errorf("%w: salary must not be negative", common.ErrValidation)
	}
	if v.SalaryMax > 0 && v.SalaryMin > v.SalaryMax {
		return fmt.Errorf("%w: salaryMin %d exceeds salaryMax %d", common.ErrValidation, v.SalaryMin, v.SalaryMax)
	}
	return nil
}

func (v Vacancy) ToRow() Row {
	return Row{
		"id":          v.ID,
		"title":       v.Title,
		"description": v.Description,
		"salaryMin":   v.SalaryMin,
		"salaryMax":   v.SalaryMax,
	}
}

func VacancyFromRow(r Row) (Vacancy, error) {
	id := r.String("id")
	if id == "" {
		return Vacancy{}, fmt.Errorf("%w: vacancy row without id", common.ErrParse)
	}
	return Vacancy{
		ID:          id,
		Title:       r.String("title"),
		Description: r.String("description"),
		SalaryMin:   r.Int("salaryMin"),
		SalaryMax:   r.Int("salaryMax"),
	}, nil
}

// DefaultVacancies is the first-run seed list.
func DefaultVacancies() []Vacancy {
	return []Vacancy{
		{ID: "1", Title: "Повар", Description: "Приготовление блюд японской и европейской кухни", SalaryMin: 60000, SalaryMax: 90000},
		{ID: "2", Title: "Официант", Description: "Обслуживание гостей зала, работа с кассой", SalaryMin: 40000, SalaryMax: 60000},
		{ID: "3", Title: "Бармен", Description: "Приготовление напитков и коктейлей", SalaryMin: 45000, SalaryMax: 70000},
	}
}
