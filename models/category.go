package models

type Category struct {
	ID       uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	NameTR   string    `gorm:"unique;not null" json:"nameTr"`
	NameEN   string    `gorm:"unique;not null" json:"nameEn"`
	Image    string    `json:"image"`
	Products []Product `gorm:"many2many:product_categories" json:"products,omitempty"`
}

func (c Category) Name(lang string) string {
	if lang == LangEN {
		return c.NameEN
	}
	return c.NameTR
}
