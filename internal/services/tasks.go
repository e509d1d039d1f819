package services

import (
	"errors"

	"todo-service/internal/models"

	"gorm.io/gorm"
)

var ErrEmptyTitle = errors.New("task title is required")

// TaskService scopes every lookup to the owning user, so a caller can
// never see or mutate another user's tasks. A foreign task id reports
// the same not-found error as a missing one.
type TaskService interface {
	CreateTask(db *gorm.DB, userID uint, title string) (*models.Task, error)
	ListTasks(db *gorm.DB, userID uint) ([]models.Task, error)
	DeleteTask(db *gorm.DB, userID, taskID uint) error
	MarkDone(db *gorm.DB, userID, taskID uint) (*models.Task, error)
	EditTask(db *gorm.DB, userID, taskID uint, title string) (*models.Task, error)
}

type TaskServiceImpl struct{}

func NewTaskService() *TaskServiceImpl {
	return &TaskServiceImpl{}
}

func (s *TaskServiceImpl) CreateTask(db *gorm.DB, userID uint, title string) (*models.Task, error) {
	if title == "" {
		return nil, ErrEmptyTitle
	}

	task := models.Task{
		UserID: userID,
		Title:  title,
	}
	if err := db.Create(&task).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

func (s *TaskServiceImpl) ListTasks(db *gorm.DB, userID uint) ([]models.Task, error) {
	tasks := []models.Task{}
	err := db.Where("user_id = ?", userID).Order("id").Find(&tasks).Error
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

func (s *TaskServiceImpl) DeleteTask(db *gorm.DB, userID, taskID uint) error {
	task, err := s.findOwned(db, userID, taskID)
	if err != nil {
		return err
	}
	return db.Delete(task).Error
}

func (s *TaskServiceImpl) MarkDone(db *gorm.DB, userID, taskID uint) (*models.Task, error) {
	task, err := s.findOwned(db, userID, taskID)
	if err != nil {
		return nil, err
	}

	// Idempotent: marking an already-done task succeeds without change.
	if !task.IsDone {
		task.IsDone = true
		if err := db.Save(task).Error; err != nil {
			return nil, err
		}
	}
	return task, nil
}

func (s *TaskServiceImpl) EditTask(db *gorm.DB, userID, taskID uint, title string) (*models.Task, error) {
	if title == "" {
		return nil, ErrEmptyTitle
	}

	task, err := s.findOwned(db, userID, taskID)
	if err != nil {
		return nil, err
	}

	task.Title = title
	if err := db.Save(task).Error; err != nil {
		return nil, err
	}
	return task, nil
}

func (s *TaskServiceImpl) findOwned(db *gorm.DB, userID, taskID uint) (*models.Task, error) {
	var task models.Task
	err := db.Where("id = ? AND user_id = ?", taskID, userID).First(&task).Error
	if err != nil {
		return nil, err
	}
	return &task, nil
}
