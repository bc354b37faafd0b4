package database

import (
	"os"

	"clearance/internal/model"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Seed inserts the baseline deans, courses and offices a fresh deployment
// needs, plus an initial admin account. Every insert is guarded by an
// existence check so restarts are safe.
func Seed(db *gorm.DB) error {
	if err := seedAcademics(db); err != nil {
		return err
	}
	if err := seedOffices(db); err != nil {
		return err
	}
	return seedAdmin(db)
}

func seedAcademics(db *gorm.DB) error {
	deans := []model.Dean{
		{Name: "School of Engineering and Technology", Code: "SET"},
		{Name: "School of Business and Accountancy", Code: "SBA"},
		{Name: "School of Arts and Sciences", Code: "SAS"},
	}
	for i := range deans {
		var existing model.Dean
		err := db.Where("code = ?", deans[i].Code).First(&existing).Error
		if err == nil {
			deans[i].ID = existing.ID
			continue
		}
		if err != gorm.ErrRecordNotFound {
			return err
		}
		if err := db.Create(&deans[i]).Error; err != nil {
			return err
		}
		log.Info().Str("dean", deans[i].Code).Msg("seeded dean")
	}

	courses := []struct {
		code, name, deanCode string
	}{
		{"BSCS", "BS Computer Science", "SET"},
		{"BSIT", "BS Information Technology", "SET"},
		{"BSCE", "BS Civil Engineering", "SET"},
		{"BSA", "BS Accountancy", "SBA"},
		{"BSBA", "BS Business Administration", "SBA"},
		{"ABCOMM", "AB Communication", "SAS"},
	}
	deanByCode := make(map[string]model.Dean, len(deans))
	for _, d := range deans {
		deanByCode[d.Code] = d
	}
	for _, c := range courses {
		var existing model.Course
		err := db.Where("code = ?", c.code).First(&existing).Error
		if err == nil {
			continue
		}
		if err != gorm.ErrRecordNotFound {
			return err
		}
		course := model.Course{Code: c.code, Name: c.name, DeanID: deanByCode[c.deanCode].ID}
		if err := db.Create(&course).Error; err != nil {
			return err
		}
		log.Info().Str("course", c.code).Msg("seeded course")
	}
	return nil
}

func seedOffices(db *gorm.DB) error {
	offices := []model.Office{
		{Name: "Library", Category: model.OfficeCategoryOther},
		{Name: "Accounting Office", Category: model.OfficeCategoryOther},
		{Name: "Registrar", Category: model.OfficeCategoryOther},
		{Name: "Guidance Office", Category: model.OfficeCategoryOther},
		{Name: "Clinic", Category: model.OfficeCategoryOther},
		{Name: "Student Affairs Office", Category: model.OfficeCategoryOther},
		{Name: "Dormitory", Category: model.OfficeCategoryDormitory},
	}
	for i := range offices {
		var existing model.Office
		err := db.Where("name = ?", offices[i].Name).First(&existing).Error
		if err == nil {
			continue
		}
		if err != gorm.ErrRecordNotFound {
			return err
		}
		if err := db.Create(&offices[i]).Error; err != nil {
			return err
		}
		log.Info().Str("office", offices[i].Name).Msg("seeded office")
	}
	return nil
}

func seedAdmin(db *gorm.DB) error {
	var count int64
	if err := db.Model(&model.User{}).Where("role = ?", model.RoleAdmin).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		password = "admin123"
		log.Warn().Msg("ADMIN_PASSWORD not set, seeding admin with default password")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := model.User{
		Username:  "admin",
		Email:     "admin@school.local",
		FirstName: "System",
		LastName:  "Administrator",
		Password:  string(hash),
		Role:      model.RoleAdmin,
	}
	if err := db.Create(&admin).Error; err != nil {
		return err
	}
	log.Info().Msg("seeded initial admin account")
	return nil
}
