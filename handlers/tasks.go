package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/triologic/medrec/services/task"
	"github.com/triologic/medrec/session"
)

type TaskHandler struct {
	taskSvc *task.Service
}

func NewTaskHandler(taskSvc *task.Service) *TaskHandler {
	return &TaskHandler{taskSvc: taskSvc}
}

func (h *TaskHandler) List(c echo.Context) error {
	result, err := h.taskSvc.List(session.GetDoctorID(c), c.QueryParam("filter"))
	if err != nil {
		return failErr(c, err)
	}
	return ok(c, http.StatusOK, "", map[string]any{
		"tasks":  result.Tasks,
		"counts": result.Counts,
	})
}

func (h *TaskHandler) Save(c echo.Context) error {
	var input task.SaveInput
	if err := c.Bind(&input); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid request body")
	}

	t, err := h.taskSvc.Save(session.GetDoctorID(c), input)
	if err != nil {
		return failErr(c, err)
	}

	status := http.StatusCreated
	message := "Task created"
	if input.ID > 0 {
		status = http.StatusOK
		message = "Task updated"
	}
	return ok(c, status, message, map[string]any{
		"task": t,
	})
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

func (h *TaskHandler) UpdateStatus(c echo.Context) error {
	taskID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || taskID == 0 {
		return fail(c, http.StatusBadRequest, "Invalid task id")
	}

	var req updateStatusRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid request body")
	}

	if err := h.taskSvc.UpdateStatus(session.GetDoctorID(c), uint(taskID), req.Status); err != nil {
		return failErr(c, err)
	}
	return ok(c, http.StatusOK, "Task status updated", nil)
}
