package handler

import (
	"github.com/iliyamo/todo-list/internal/dispatch"
	"github.com/iliyamo/todo-list/internal/service"
)

// TaskController exposes the task use cases.  Every route behind it
// requires authentication.
type TaskController struct {
	Add          *service.AddTask
	List         *service.GetTasks
	Get          *service.GetTask
	Update       *service.UpdateTask
	MarkDone     *service.MarkDoneTask
	Delete       *service.DeleteTask
	BulkDelete   *service.BulkDeleteTasks
	BulkMarkDone *service.BulkMarkDoneTasks
}

func (h *TaskController) AddTask(req *dispatch.Request) (*dispatch.Response, error) {
	t, err := h.Add.Execute(req)
	if err != nil {
		return nil, err
	}
	return dispatch.Success("Task added successfully.", t), nil
}

// GetTasks answers with type "info" when the page is empty.
func (h *TaskController) GetTasks(req *dispatch.Request) (*dispatch.Response, error) {
	p, err := h.List.Execute(req)
	if err != nil {
		return nil, err
	}
	if len(p.Tasks) == 0 {
		return dispatch.Info("No tasks found.", nil).WithTotalPages(p.TotalPages), nil
	}
	return dispatch.Success("Tasks retrieved successfully.", p.Tasks).WithTotalPages(p.TotalPages), nil
}

func (h *TaskController) GetTask(req *dispatch.Request) (*dispatch.Response, error) {
	t, err := h.Get.Execute(req)
	if err != nil {
		return nil, err
	}
	return dispatch.Success("Task retrieved successfully.", t), nil
}

func (h *TaskController) UpdateTask(req *dispatch.Request) (*dispatch.Response, error) {
	t, err := h.Update.Execute(req)
	if err != nil {
		return nil, err
	}
	return dispatch.Success("Task updated successfully.", t), nil
}

func (h *TaskController) MarkDoneTask(req *dispatch.Request) (*dispatch.Response, error) {
	t, err := h.MarkDone.Execute(req)
	if err != nil {
		return nil, err
	}
	return dispatch.Success("Task status updated successfully.", t), nil
}

func (h *TaskController) DeleteTask(req *dispatch.Request) (*dispatch.Response, error) {
	if err := h.Delete.Execute(req); err != nil {
		return nil, err
	}
	return dispatch.Success("Task deleted successfully.", nil), nil
}

func (h *TaskController) BulkDeleteTasks(req *dispatch.Request) (*dispatch.Response, error) {
	r, err := h.BulkDelete.Execute(req)
	if err != nil {
		return nil, err
	}
	return dispatch.Success("Tasks deleted successfully.", r), nil
}

func (h *TaskController) BulkMarkDoneTasks(req *dispatch.Request) (*dispatch.Response, error) {
	r, err := h.BulkMarkDone.Execute(req)
	if err != nil {
		return nil, err
	}
	return dispatch.Success("Tasks updated successfully.", r), nil
}
