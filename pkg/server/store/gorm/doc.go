// Package gorm provides GORM-based implementations of the store interfaces
// defined in the parent store package.
//
// Every method opens its own connection through a db.Connector for the
// principal it is given and releases it before returning. Driver errors
// are classified by SQLSTATE into the store error taxonomy.
package gorm
