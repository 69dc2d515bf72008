package pages

// PageRecord is the persisted shape of a page. Column names are pinned to the
// legacy schema so existing databases keep working unchanged.
type PageRecord struct {
	ID          string `gorm:"column:id;primaryKey"`
	HTMLContent string `gorm:"column:html_content;type:text;not null"`
	CreatedAt   int64  `gorm:"column:created_at;not null;autoCreateTime:false"`
	Password    string `gorm:"column:password"`
	IsProtected int    `gorm:"column:is_protected;default:0"`
	CodeType    string `gorm:"column:code_type;default:html"`
	Title       string `gorm:"column:title"`
}

// TableName defines the table name for the page record.
func (PageRecord) TableName() string {
	return "pages"
}

func (r *PageRecord) toDomain() *Page {
	if r == nil {
		return nil
	}

	return &Page{
		ID:        r.ID,
		Content:   r.HTMLContent,
		CreatedAt: r.CreatedAt,
		Password:  r.Password,
		Protected: r.IsProtected != 0,
		CodeType:  CodeType(r.CodeType),
		Title:     r.Title,
	}
}
