package model

import "time"

// DateLayout is the wire and storage layout of calendar dates.
const DateLayout = "2006-01-02"

// AidDistribution is one handout of a resource to a victim. The row has a
// composite natural key and no surrogate id.
type AidDistribution struct {
	VolunteerID int64     `gorm:"column:volunteer_id"`
	VictimID    int64     `gorm:"column:victim_id"`
	ResourceID  int64     `gorm:"column:resource_id"`
	DistDate    time.Time `gorm:"column:dist_date;type:date"`
	Qty         int64     `gorm:"column:qty"`
}

func (AidDistribution) TableName() string {
	return "aid_distribution"
}

// DistributeAid holds the arguments of the distribute_aid procedure. Nil
// fields are passed as NULL and left to the procedure to reject.
type DistributeAid struct {
	VolunteerID *int64
	VictimID    *int64
	ResourceID  *int64
	Qty         *int64
	Date        *string
}

// AssignVolunteer holds the arguments of the assign_volunteer procedure.
type AssignVolunteer struct {
	CampID      *int64
	VolunteerID *int64
	Date        string
}
