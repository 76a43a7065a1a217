package model

// DistributionRow is one aid distribution joined with the names around it.
type DistributionRow struct {
	Date      string `gorm:"column:date" json:"date"`
	Volunteer string `gorm:"column:volunteer" json:"volunteer"`
	Victim    string `gorm:"column:victim" json:"victim"`
	Resource  string `gorm:"column:resource" json:"resource"`
	Qty       int64  `gorm:"column:qty" json:"qty"`
	CampID    *int64 `gorm:"column:camp_id" json:"camp_id"`
}

// Dashboard is the landing page summary.
type Dashboard struct {
	Camps      int64             `json:"camps"`
	Volunteers int64             `json:"volunteers"`
	Victims    int64             `json:"victims"`
	AidRows    int64             `json:"aid_rows"`
	RecentAid  []DistributionRow `json:"recent_aid"`
}

// VictimTotal is a victim and the quantity they received.
type VictimTotal struct {
	VictimID int64  `gorm:"column:victim_id" json:"victim_id"`
	Name     string `gorm:"column:name" json:"name"`
	TotalQty int64  `gorm:"column:total_qty" json:"total_qty"`
}

// ResourceTotal is a resource and the quantity handed out.
type ResourceTotal struct {
	Resource string `gorm:"column:resource" json:"resource"`
	TotalQty int64  `gorm:"column:total_qty" json:"total_qty"`
}
