// Package model defines the rows the workflow and report queries read and
// write.
//
// The eight relief tables are reached generically through the schema
// registry; only rows a workflow or report names have a model here.
//
// # Models
//
//   - AidDistribution: one handout, keyed by volunteer, victim, resource and date
//   - DistributeAid, AssignVolunteer: procedure arguments, nil meaning NULL
//   - Dashboard, DistributionRow, VictimTotal, ResourceTotal: report rows
//
// Dates travel as "2006-01-02" strings (DateLayout).
package model
