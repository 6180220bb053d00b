package database

import "warden/internal/models"

// PersistentModels returns the authoritative set of schema-managed GORM models.
func PersistentModels() []interface{} {
	return []interface{}{
		&models.Report{},
		&models.TrustStanding{},
		&models.Penalty{},
		&models.Content{},
		&models.BannedTerm{},
	}
}
