// Package models contains the GORM persistence models. Models are kept
// separate from domain entities: repositories convert at the boundary
// with ToDomain/FromDomain so gorm tags never leak into the domain.
package models
