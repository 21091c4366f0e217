package controllers

import (
	"net/http"
	"strconv"

	"github.com/dlopezm/gin-task-api/internal/models"
	"github.com/dlopezm/gin-task-api/internal/services"
	"github.com/dlopezm/gin-task-api/internal/storage"
	"github.com/gin-gonic/gin"
)

// TaskController handles HTTP requests related to tasks
type TaskController interface {
	// ListTasks retrieves the caller's authorized page of tasks
	ListTasks(c *gin.Context)
	// GetTaskByID retrieves a task by its ID
	GetTaskByID(c *gin.Context)
	// CreateTask creates a new task with optional PDF attachments
	CreateTask(c *gin.Context)
	// UpdateTask updates an existing task
	UpdateTask(c *gin.Context)
	// DeleteTask deletes a task by its ID
	DeleteTask(c *gin.Context)
}

type taskController struct {
	service   services.TaskService
	documents *storage.DocumentStore
}

// NewTaskController creates a new instance of TaskController
func NewTaskController(service services.TaskService, documents *storage.DocumentStore) TaskController {
	return &taskController{service: service, documents: documents}
}

// ListTasks godoc
// @Summary List tasks
// @Description Filtered, sorted, paginated task listing. Non-admin callers only ever see tasks assigned to them.
// @Tags tasks
// @Accept json
// @Produce json
// @Param status query string false "Filter by status (pending, in-progress, completed)"
// @Param priority query string false "Filter by priority (low, medium, high)"
// @Param assignedTo query int false "Filter by assignee user ID (admins only; ignored otherwise)"
// @Param sort query string false "Sort field: id, title, status, priority, dueDate" default(dueDate)
// @Param order query string false "ASC or DESC" default(ASC)
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Page size" default(10)
// @Success 200 {object} services.TaskPage
// @Failure 400 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/tasks [get]
func (tc *taskController) ListTasks(c *gin.Context) {
	principal, ok := requirePrincipal(c)
	if !ok {
		return
	}

	params, err := services.ParseTaskListParams(c.Request.URL.Query())
	if err != nil {
		respondError(c, err)
		return
	}

	page, err := tc.service.List(principal, params)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// GetTaskByID godoc
// @Summary Get task by ID
// @Description Get a single task with its assignee identity
// @Tags tasks
// @Accept json
// @Produce json
// @Param id path int true "Task ID"
// @Success 200 {object} models.Task
// @Failure 400 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/tasks/{id} [get]
func (tc *taskController) GetTaskByID(c *gin.Context) {
	id, ok := taskID(c)
	if !ok {
		return
	}

	task, err := tc.service.GetByID(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// CreateTask godoc
// @Summary Create a task
// @Description Create a task from a multipart form with up to 3 PDF attachments. Non-admins may only assign to themselves.
// @Tags tasks
// @Accept multipart/form-data
// @Produce json
// @Param title formData string true "Title"
// @Param description formData string false "Description"
// @Param status formData string false "Status" default(pending)
// @Param priority formData string false "Priority" default(medium)
// @Param dueDate formData string false "Due date (YYYY-MM-DD or RFC 3339)"
// @Param assignedTo formData int false "Assignee user ID"
// @Param documents formData file false "PDF attachments (max 3)"
// @Success 201 {object} models.Task
// @Failure 400 {object} models.APIError
// @Failure 403 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/tasks [post]
func (tc *taskController) CreateTask(c *gin.Context) {
	principal, ok := requirePrincipal(c)
	if !ok {
		return
	}

	var req struct {
		Title       string `form:"title" binding:"required"`
		Description string `form:"description"`
		Status      string `form:"status"`
		Priority    string `form:"priority"`
		DueDate     string `form:"dueDate"`
		AssignedTo  *uint  `form:"assignedTo"`
	}
	if err := c.ShouldBind(&req); err != nil {
		respondError(c, models.NewValidationError(err.Error()))
		return
	}

	dueDate, err := services.ParseDueDate(req.DueDate)
	if err != nil {
		respondError(c, err)
		return
	}

	documents, err := tc.saveDocuments(c)
	if err != nil {
		respondError(c, err)
		return
	}

	task := &models.Task{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		DueDate:     dueDate,
		AssignedTo:  req.AssignedTo,
		Documents:   documents,
	}

	if err := tc.service.Create(principal, task); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, task)
}

// UpdateTask godoc
// @Summary Update a task
// @Description Update task fields; only the assignee or an admin may mutate. Uploading documents replaces the attachment list.
// @Tags tasks
// @Accept multipart/form-data
// @Produce json
// @Param id path int true "Task ID"
// @Param title formData string false "Title"
// @Param description formData string false "Description"
// @Param status formData string false "Status"
// @Param priority formData string false "Priority"
// @Param dueDate formData string false "Due date (YYYY-MM-DD or RFC 3339)"
// @Param assignedTo formData int false "Assignee user ID (empty to unassign)"
// @Param documents formData file false "PDF attachments (max 3)"
// @Success 200 {object} models.Task
// @Failure 400 {object} models.APIError
// @Failure 403 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/tasks/{id} [put]
func (tc *taskController) UpdateTask(c *gin.Context) {
	principal, ok := requirePrincipal(c)
	if !ok {
		return
	}
	id, ok := taskID(c)
	if !ok {
		return
	}

	update, err := tc.parseUpdate(c)
	if err != nil {
		respondError(c, err)
		return
	}

	task, err := tc.service.Update(principal, id, update)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// DeleteTask godoc
// @Summary Delete a task
// @Description Delete a task; only the assignee or an admin may delete
// @Tags tasks
// @Accept json
// @Produce json
// @Param id path int true "Task ID"
// @Success 200 {object} map[string]string
// @Failure 400 {object} models.APIError
// @Failure 403 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/tasks/{id} [delete]
func (tc *taskController) DeleteTask(c *gin.Context) {
	principal, ok := requirePrincipal(c)
	if !ok {
		return
	}
	id, ok := taskID(c)
	if !ok {
		return
	}

	if err := tc.service.Delete(principal, id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Task deleted successfully"})
}

// parseUpdate builds the partial update from the multipart form. Absent
// fields stay nil so the service leaves them untouched.
func (tc *taskController) parseUpdate(c *gin.Context) (services.TaskUpdate, error) {
	var update services.TaskUpdate

	if v, ok := c.GetPostForm("title"); ok {
		update.Title = &v
	}
	if v, ok := c.GetPostForm("description"); ok {
		update.Description = &v
	}
	if v, ok := c.GetPostForm("status"); ok {
		update.Status = &v
	}
	if v, ok := c.GetPostForm("priority"); ok {
		update.Priority = &v
	}
	if v, ok := c.GetPostForm("dueDate"); ok {
		update.DueDate = &v
	}
	if v, ok := c.GetPostForm("assignedTo"); ok {
		if v == "" {
			update.ClearAssignee = true
		} else {
			id, err := strconv.ParseUint(v, 10, 32)
			if err != nil {
				return update, models.NewValidationError("assignedTo must be a positive integer")
			}
			assignedTo := uint(id)
			update.AssignedTo = &assignedTo
		}
	}

	documents, err := tc.saveDocuments(c)
	if err != nil {
		return update, err
	}
	update.Documents = documents
	return update, nil
}

// saveDocuments stores any uploaded files, returning nil when the request
// carried none.
func (tc *taskController) saveDocuments(c *gin.Context) (models.DocumentList, error) {
	form, err := c.MultipartForm()
	if err != nil {
		// Not a multipart request; JSON bodies carry no files.
		return nil, nil
	}
	return tc.documents.Save(form.File["documents"])
}

// taskID parses the id path parameter.
func taskID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		respondError(c, models.NewValidationError("Invalid task ID format"))
		return 0, false
	}
	return uint(id), true
}
