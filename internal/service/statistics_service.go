package service

import (
	"context"

	"clearance/internal/model"
	"clearance/pkg/apperror"

	"gorm.io/gorm"
)

type StatisticsService interface {
	GetProgramChairStatistics(ctx context.Context, schoolYear, semester string) (model.ClearanceStatisticsResponse, error)
}

type statisticsService struct {
	db *gorm.DB
}

func NewStatisticsService(db *gorm.DB) StatisticsService {
	return &statisticsService{db: db}
}

// GetProgramChairStatistics aggregates the dashboard numbers for one term:
// how many students exist, how many are cleared and waiting for the permit
// unlock, how many permits are out, and the per-course breakdown.
func (s *statisticsService) GetProgramChairStatistics(ctx context.Context, schoolYear, semester string) (model.ClearanceStatisticsResponse, error) {
	if schoolYear == "" || !model.ValidSemester(semester) {
		return model.ClearanceStatisticsResponse{}, apperror.Validation("a school year and a valid semester are required")
	}

	response := model.ClearanceStatisticsResponse{
		SchoolYear: schoolYear,
		Semester:   semester,
	}

	if err := s.db.WithContext(ctx).
		Model(&model.Student{}).
		Where("status = ?", model.StudentStatusActive).
		Count(&response.TotalStudents).Error; err != nil {
		return response, err
	}

	if err := s.db.WithContext(ctx).
		Model(&model.Clearance{}).
		Where("school_year = ? AND semester = ? AND is_cleared = ? AND permit_unlocked = ?", schoolYear, semester, true, false).
		Count(&response.ReadyForUnlock).Error; err != nil {
		return response, err
	}

	if err := s.db.WithContext(ctx).
		Model(&model.Clearance{}).
		Where("school_year = ? AND semester = ? AND permit_unlocked = ?", schoolYear, semester, true).
		Count(&response.PermitsUnlocked).Error; err != nil {
		return response, err
	}

	var recent []struct {
		StudentNumber string
		FirstName     string
		LastName      string
		CourseCode    string
		ClearedAt     string
	}
	if err := s.db.WithContext(ctx).Table("clearances").
		Select("students.student_number, users.first_name, users.last_name, courses.code as course_code, clearances.cleared_at").
		Joins("JOIN students ON students.id = clearances.student_id").
		Joins("JOIN users ON users.id = students.user_id").
		Joins("JOIN courses ON courses.id = students.course_id").
		Where("clearances.school_year = ? AND clearances.semester = ? AND clearances.permit_unlocked = ?", schoolYear, semester, true).
		Order("clearances.cleared_at desc").
		Limit(5).
		Scan(&recent).Error; err != nil {
		return response, err
	}
	for _, row := range recent {
		response.RecentlyUnlocked = append(response.RecentlyUnlocked, model.RecentUnlock{
			StudentNumber: row.StudentNumber,
			StudentName:   row.FirstName + " " + row.LastName,
			CourseCode:    row.CourseCode,
			ClearedAt:     row.ClearedAt,
		})
	}

	var breakdown []model.CourseClearanceStat
	if err := s.db.WithContext(ctx).Table("students").
		Select("courses.code as course_code, courses.name as course_name, count(students.id) as total, "+
			"count(clearances.id) filter (where clearances.is_cleared) as cleared").
		Joins("JOIN courses ON courses.id = students.course_id").
		Joins("LEFT JOIN clearances ON clearances.student_id = students.id AND clearances.school_year = ? AND clearances.semester = ?", schoolYear, semester).
		Where("students.status = ?", model.StudentStatusActive).
		Group("courses.code, courses.name").
		Order("courses.code").
		Scan(&breakdown).Error; err != nil {
		return response, err
	}
	response.CourseBreakdown = breakdown

	return response, nil
}
