package model

// SiteConfigEntry is one key/value pair of site configuration (ticket shop
// URL, social links and similar). Last write wins, no versioning.
type SiteConfigEntry struct {
	Key   string `json:"key" gorm:"column:config_key;primaryKey;size:100"`
	Value string `json:"value" gorm:"column:config_value;size:1024;not null"`
}

// TableName keeps the table singularized.
func (SiteConfigEntry) TableName() string { return "site_config" }
