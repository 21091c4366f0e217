package services

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dlopezm/gin-task-api/internal/models"
	"gorm.io/gorm"
)

// taskSortColumns is the closed set of sort keys accepted by task listing,
// mapped to their column names. Anything outside this set is rejected so
// client-controlled strings never reach the ORDER BY clause.
var taskSortColumns = map[string]string{
	"id":       "id",
	"title":    "title",
	"status":   "status",
	"priority": "priority",
	"dueDate":  "due_date",
}

// TaskListParams is the parsed, validated filter intent of a list request,
// before any authorization scoping has been applied.
type TaskListParams struct {
	Status     string
	Priority   string
	AssignedTo *uint
	Sort       string
	Order      string
	Page       int
	Limit      int
}

// ParseTaskListParams validates raw query values into TaskListParams.
// Defaults: sort=dueDate, order=ASC, page=1, limit=10.
func ParseTaskListParams(query url.Values) (TaskListParams, error) {
	params := TaskListParams{
		Status:   query.Get("status"),
		Priority: query.Get("priority"),
		Sort:     "dueDate",
		Order:    "ASC",
		Page:     1,
		Limit:    10,
	}

	if params.Status != "" && !models.ValidStatus(params.Status) {
		return params, models.NewValidationError(fmt.Sprintf("Invalid status filter: %s", params.Status))
	}
	if params.Priority != "" && !models.ValidPriority(params.Priority) {
		return params, models.NewValidationError(fmt.Sprintf("Invalid priority filter: %s", params.Priority))
	}

	if raw := query.Get("assignedTo"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil || id == 0 {
			return params, models.NewValidationError("assignedTo must be a positive integer")
		}
		assignedTo := uint(id)
		params.AssignedTo = &assignedTo
	}

	if raw := query.Get("sort"); raw != "" {
		if _, ok := taskSortColumns[raw]; !ok {
			return params, models.NewValidationError(fmt.Sprintf("Invalid sort field: %s", raw))
		}
		params.Sort = raw
	}

	order, err := parseOrder(query.Get("order"))
	if err != nil {
		return params, err
	}
	params.Order = order

	params.Page, params.Limit, err = parsePagination(query)
	if err != nil {
		return params, err
	}
	return params, nil
}

// ScopeTaskFilter applies the authorization transform to a requested filter:
// a non-admin principal's view is unconditionally restricted to tasks
// assigned to them, overriding any assignedTo value the request carried.
// Pure function, independent of query execution.
func ScopeTaskFilter(principal models.Principal, params TaskListParams) TaskListParams {
	if !principal.IsAdmin() {
		id := principal.ID
		params.AssignedTo = &id
	}
	return params
}

// AuthorizeTaskMutation reports whether the principal may update or delete
// the task: admins always, otherwise only the assigned user.
func AuthorizeTaskMutation(principal models.Principal, task *models.Task) bool {
	if principal.IsAdmin() {
		return true
	}
	return task.AssignedTo != nil && *task.AssignedTo == principal.ID
}

// TaskPage is one page of the authorized task listing.
type TaskPage struct {
	Total int64         `json:"total"`
	Page  int           `json:"page"`
	Pages int           `json:"pages"`
	Tasks []models.Task `json:"tasks"`
}

// TaskUpdate carries the fields a task update may change. Nil fields are
// left untouched; Documents replaces the attachment list only when non-nil.
type TaskUpdate struct {
	Title         *string
	Description   *string
	Status        *string
	Priority      *string
	DueDate       *string
	AssignedTo    *uint
	ClearAssignee bool
	Documents     models.DocumentList
}

// TaskService provides the authorization-aware task operations
type TaskService interface {
	// List retrieves the filtered, sorted, paginated view of tasks the
	// principal is allowed to see, each joined with its assignee identity
	List(principal models.Principal, params TaskListParams) (*TaskPage, error)
	// GetByID retrieves a task by its ID
	GetByID(id uint) (*models.Task, error)
	// Create creates a new task, enforcing the assignment policy
	Create(principal models.Principal, task *models.Task) error
	// Update applies a mutation after the ownership check
	Update(principal models.Principal, id uint, update TaskUpdate) (*models.Task, error)
	// Delete removes a task after the ownership check
	Delete(principal models.Principal, id uint) error
}

type taskService struct {
	db *gorm.DB
}

// NewTaskService creates a new instance of TaskService
func NewTaskService(db *gorm.DB) TaskService {
	return &taskService{db: db}
}

func (s *taskService) List(principal models.Principal, params TaskListParams) (*TaskPage, error) {
	params = ScopeTaskFilter(principal, params)

	q := s.db.Model(&models.Task{})
	if params.Status != "" {
		q = q.Where("status = ?", params.Status)
	}
	if params.Priority != "" {
		q = q.Where("priority = ?", params.Priority)
	}
	if params.AssignedTo != nil {
		q = q.Where("assigned_to = ?", *params.AssignedTo)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, err
	}

	var tasks []models.Task
	err := q.Order(fmt.Sprintf("%s %s", taskSortColumns[params.Sort], params.Order)).
		Offset((params.Page - 1) * params.Limit).
		Limit(params.Limit).
		Preload("Assignee").
		Find(&tasks).Error
	if err != nil {
		return nil, err
	}

	return &TaskPage{
		Total: total,
		Page:  params.Page,
		Pages: pageCount(total, params.Limit),
		Tasks: tasks,
	}, nil
}

func (s *taskService) GetByID(id uint) (*models.Task, error) {
	var task models.Task
	if err := s.db.Preload("Assignee").First(&task, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Task not found")
		}
		return nil, err
	}
	return &task, nil
}

func (s *taskService) Create(principal models.Principal, task *models.Task) error {
	if strings.TrimSpace(task.Title) == "" {
		return models.NewValidationError("title is required")
	}
	if task.Status == "" {
		task.Status = models.StatusPending
	}
	if !models.ValidStatus(task.Status) {
		return models.NewValidationError(fmt.Sprintf("Invalid status: %s", task.Status))
	}
	if task.Priority == "" {
		task.Priority = models.PriorityMedium
	}
	if !models.ValidPriority(task.Priority) {
		return models.NewValidationError(fmt.Sprintf("Invalid priority: %s", task.Priority))
	}

	// Non-admins may only create unassigned tasks or assign to themselves.
	if task.AssignedTo != nil && !principal.IsAdmin() && *task.AssignedTo != principal.ID {
		return models.NewForbiddenError("Cannot assign tasks to another user")
	}
	if err := s.checkAssignee(task.AssignedTo); err != nil {
		return err
	}

	if err := s.db.Omit("Assignee").Create(task).Error; err != nil {
		return err
	}
	return s.reloadAssignee(task)
}

func (s *taskService) Update(principal models.Principal, id uint, update TaskUpdate) (*models.Task, error) {
	// Existence resolves before authorization: a missing task is a 404 for
	// every caller, authorized or not.
	task, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	if !AuthorizeTaskMutation(principal, task) {
		return nil, models.NewForbiddenError("Not authorized")
	}

	if update.Title != nil {
		if strings.TrimSpace(*update.Title) == "" {
			return nil, models.NewValidationError("title cannot be empty")
		}
		task.Title = *update.Title
	}
	if update.Description != nil {
		task.Description = *update.Description
	}
	if update.Status != nil {
		if !models.ValidStatus(*update.Status) {
			return nil, models.NewValidationError(fmt.Sprintf("Invalid status: %s", *update.Status))
		}
		task.Status = *update.Status
	}
	if update.Priority != nil {
		if !models.ValidPriority(*update.Priority) {
			return nil, models.NewValidationError(fmt.Sprintf("Invalid priority: %s", *update.Priority))
		}
		task.Priority = *update.Priority
	}
	if update.DueDate != nil {
		due, err := ParseDueDate(*update.DueDate)
		if err != nil {
			return nil, err
		}
		task.DueDate = due
	}
	if update.ClearAssignee {
		task.AssignedTo = nil
		task.Assignee = nil
	} else if update.AssignedTo != nil {
		// Only admins may reassign a task to somebody else.
		if !principal.IsAdmin() && *update.AssignedTo != principal.ID {
			return nil, models.NewForbiddenError("Cannot assign tasks to another user")
		}
		if err := s.checkAssignee(update.AssignedTo); err != nil {
			return nil, err
		}
		task.AssignedTo = update.AssignedTo
	}
	if update.Documents != nil {
		task.Documents = update.Documents
	}

	// The preloaded assignee is a reduced view of a users row; keep it out
	// of the write or gorm would try to upsert it into the users table and
	// clobber a reassigned foreign key with the stale association.
	task.Assignee = nil
	if err := s.db.Omit("Assignee").Save(task).Error; err != nil {
		return nil, err
	}
	if err := s.reloadAssignee(task); err != nil {
		return nil, err
	}
	return task, nil
}

func (s *taskService) Delete(principal models.Principal, id uint) error {
	task, err := s.GetByID(id)
	if err != nil {
		return err
	}
	if !AuthorizeTaskMutation(principal, task) {
		return models.NewForbiddenError("Not authorized")
	}
	return s.db.Delete(&models.Task{}, id).Error
}

// checkAssignee enforces that a non-null assignee references an existing user.
func (s *taskService) checkAssignee(assignedTo *uint) error {
	if assignedTo == nil {
		return nil
	}
	var count int64
	if err := s.db.Model(&models.User{}).Where("id = ?", *assignedTo).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return models.NewValidationError(fmt.Sprintf("Assigned user %d does not exist", *assignedTo))
	}
	return nil
}

// reloadAssignee refreshes the joined assignee identity after a write.
func (s *taskService) reloadAssignee(task *models.Task) error {
	task.Assignee = nil
	if task.AssignedTo == nil {
		return nil
	}
	var assignee models.TaskAssignee
	if err := s.db.First(&assignee, *task.AssignedTo).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}
	task.Assignee = &assignee
	return nil
}

// ParseDueDate accepts either a plain date or an RFC 3339 timestamp.
func ParseDueDate(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if due, err := time.Parse(layout, raw); err == nil {
			return &due, nil
		}
	}
	return nil, models.NewValidationError(fmt.Sprintf("Invalid due date: %s", raw))
}

// pageCount computes ceil(total/limit).
func pageCount(total int64, limit int) int {
	return int((total + int64(limit) - 1) / int64(limit))
}

// parseOrder normalizes the order parameter case-insensitively, default ASC.
func parseOrder(raw string) (string, error) {
	if raw == "" {
		return "ASC", nil
	}
	switch strings.ToUpper(raw) {
	case "ASC":
		return "ASC", nil
	case "DESC":
		return "DESC", nil
	default:
		return "", models.NewValidationError(fmt.Sprintf("Invalid order: %s", raw))
	}
}

// parsePagination validates page and limit as positive integers.
func parsePagination(query url.Values) (page, limit int, err error) {
	page, limit = 1, 10
	if raw := query.Get("page"); raw != "" {
		page, err = strconv.Atoi(raw)
		if err != nil || page < 1 {
			return 0, 0, models.NewValidationError("page must be a positive integer")
		}
	}
	if raw := query.Get("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 1 {
			return 0, 0, models.NewValidationError("limit must be a positive integer")
		}
	}
	return page, limit, nil
}
