package service

import (
	"math"

	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog/log"

	"github.com/iliyamo/todo-list/internal/dispatch"
	"github.com/iliyamo/todo-list/internal/model"
	"github.com/iliyamo/todo-list/internal/queue"
	"github.com/iliyamo/todo-list/internal/validator"
)

const (
	msgTaskNotFound  = "No task found."
	msgTasksNotFound = "No tasks found."
	msgInvalidStatus = "Invalid status value."
	msgInvalidTaskID = "Invalid task id."
	msgNothingToSet  = "Nothing to update."
)

// stripHTML removes every tag from free text.  The policy is safe for
// concurrent use.
var stripHTML = bluemonday.StrictPolicy()

func sanitize(s string) string {
	return stripHTML.Sanitize(s)
}

// AddTask creates a task owned by the caller.
type AddTask struct {
	Tasks  TaskStore
	Events EventPublisher
}

func (s *AddTask) Execute(req *dispatch.Request) (model.NewTask, error) {
	v := validator.New(req)
	title, err := v.RequiredString("title", "Title", validator.MaxTitle)
	if err != nil {
		return model.NewTask{}, err
	}
	desc, err := v.OptionalString("description", 0)
	if err != nil {
		return model.NewTask{}, err
	}

	res := s.Tasks.Create(req.Context(), req.UserID(), title, sanitize(desc))
	if !res.Success {
		return model.NewTask{}, dbError("create task", res.Failure())
	}
	ev := queue.NewTaskEvent(queue.TaskCreated, req.UserID(), res.Data.ID)
	ev.Title = res.Data.Title
	publish(req.Context(), s.Events, ev)
	return res.Data.Created(), nil
}

// TaskPage is one page of a task listing.
type TaskPage struct {
	Tasks      []model.Task
	Page       int
	PerPage    int
	TotalPages int
}

// GetTasks lists the caller's tasks, newest change first.
type GetTasks struct {
	Tasks TaskStore
}

func (s *GetTasks) Execute(req *dispatch.Request) (TaskPage, error) {
	v := validator.New(req)
	page, perPage := v.Page(), v.PerPage()
	isDone, err := v.QueryBool("is_done", msgInvalidStatus)
	if err != nil {
		return TaskPage{}, err
	}

	ctx, userID := req.Context(), req.UserID()
	total := 1
	if cnt := s.Tasks.Count(ctx, userID, isDone); cnt.Success {
		total = totalPages(cnt.Data, perPage)
	} else {
		log.Warn().Err(cnt.Failure()).Str("user_id", userID).Msg("count tasks failed; reporting one page")
	}
	// an offset past any int holds no rows
	if page-1 > math.MaxInt/perPage {
		return TaskPage{Page: page, PerPage: perPage, TotalPages: total}, nil
	}

	res := s.Tasks.List(ctx, userID, model.TaskFilter{
		IsDone: isDone,
		Limit:  perPage,
		Offset: (page - 1) * perPage,
	})
	if !res.Success {
		return TaskPage{}, dbError("list tasks", res.Failure())
	}
	return TaskPage{Tasks: res.Data, Page: page, PerPage: perPage, TotalPages: total}, nil
}

// totalPages is ceil(count/perPage), never below 1.
func totalPages(count, perPage int) int {
	if count <= 0 || perPage <= 0 {
		return 1
	}
	return (count + perPage - 1) / perPage
}

// GetTask returns one task of the caller.
type GetTask struct {
	Tasks TaskStore
}

func (s *GetTask) Execute(req *dispatch.Request) (model.Task, error) {
	id, err := validator.New(req).ID("id", msgInvalidTaskID)
	if err != nil {
		return model.Task{}, err
	}
	t, err := findTask(req, s.Tasks, id)
	if err != nil {
		return model.Task{}, err
	}
	return *t, nil
}

func findTask(req *dispatch.Request, tasks TaskStore, id int64) (*model.Task, error) {
	res := tasks.Find(req.Context(), req.UserID(), id)
	if !res.Success {
		return nil, dbError("find task", res.Failure())
	}
	if res.Data == nil {
		return nil, dispatch.NotFound(msgTaskNotFound)
	}
	return res.Data, nil
}

// UpdateTask changes any of title, description and is_done.  Fields left
// out of the body keep their value.
type UpdateTask struct {
	Tasks  TaskStore
	Events EventPublisher
}

func (s *UpdateTask) Execute(req *dispatch.Request) (model.Task, error) {
	v := validator.New(req)
	id, err := v.ID("id", msgInvalidTaskID)
	if err != nil {
		return model.Task{}, err
	}
	if !req.HasBody("title") && !req.HasBody("description") && !req.HasBody("is_done") {
		return model.Task{}, dispatch.Validation(msgNothingToSet)
	}
	var title, desc string
	if req.HasBody("title") {
		if title, err = v.RequiredString("title", "Title", validator.MaxTitle); err != nil {
			return model.Task{}, err
		}
	}
	if req.HasBody("description") {
		if desc, err = v.OptionalString("description", 0); err != nil {
			return model.Task{}, err
		}
	}
	done, err := v.OptionalBool("is_done", msgInvalidStatus)
	if err != nil {
		return model.Task{}, err
	}

	t, err := findTask(req, s.Tasks, id)
	if err != nil {
		return model.Task{}, err
	}
	wasDone := t.IsDone
	if req.HasBody("title") {
		t.Title = title
	}
	if req.HasBody("description") {
		t.Description = sanitize(desc)
	}
	if done != nil {
		t.IsDone = *done
	}

	res := s.Tasks.Update(req.Context(), *t)
	if !res.Success {
		return model.Task{}, dbError("update task", res.Failure())
	}
	if res.Affected == 0 {
		return model.Task{}, dispatch.NotFound(msgTaskNotFound)
	}
	if t.IsDone && !wasDone {
		publish(req.Context(), s.Events, completed(req.UserID(), id))
	}
	return res.Data, nil
}

// MarkDoneTask sets the status flag of one task.
type MarkDoneTask struct {
	Tasks  TaskStore
	Events EventPublisher
}

func (s *MarkDoneTask) Execute(req *dispatch.Request) (model.Task, error) {
	v := validator.New(req)
	id, err := v.ID("id", msgInvalidTaskID)
	if err != nil {
		return model.Task{}, err
	}
	done, err := v.Bool("is_done", msgInvalidStatus)
	if err != nil {
		return model.Task{}, err
	}

	res := s.Tasks.SetDone(req.Context(), req.UserID(), id, done)
	if !res.Success {
		return model.Task{}, dbError("mark task", res.Failure())
	}
	if res.Affected == 0 {
		return model.Task{}, dispatch.NotFound(msgTaskNotFound)
	}
	t, err := findTask(req, s.Tasks, id)
	if err != nil {
		return model.Task{}, err
	}
	if done {
		publish(req.Context(), s.Events, completed(req.UserID(), id))
	}
	return *t, nil
}

// DeleteTask removes one task.  Deleting a task that is already gone is
// NotFound, not a failure of the server.
type DeleteTask struct {
	Tasks  TaskStore
	Events EventPublisher
}

func (s *DeleteTask) Execute(req *dispatch.Request) error {
	id, err := validator.New(req).ID("id", msgInvalidTaskID)
	if err != nil {
		return err
	}
	res := s.Tasks.Delete(req.Context(), req.UserID(), id)
	if !res.Success {
		return dbError("delete task", res.Failure())
	}
	if res.Affected == 0 {
		return dispatch.NotFound(msgTaskNotFound)
	}
	publish(req.Context(), s.Events, queue.NewTaskEvent(queue.TaskDeleted, req.UserID(), id))
	return nil
}

// BulkResult reports how many tasks a bulk call touched.
type BulkResult struct {
	Affected int64 `json:"affected"`
}

// BulkDeleteTasks removes every listed task the caller owns.
type BulkDeleteTasks struct {
	Tasks  TaskStore
	Events EventPublisher
}

func (s *BulkDeleteTasks) Execute(req *dispatch.Request) (BulkResult, error) {
	ids, err := validator.New(req).IDs("ids")
	if err != nil {
		return BulkResult{}, err
	}
	res := s.Tasks.BulkDelete(req.Context(), req.UserID(), ids)
	if !res.Success {
		return BulkResult{}, dbError("bulk delete tasks", res.Failure())
	}
	if res.Affected == 0 {
		return BulkResult{}, dispatch.NotFound(msgTasksNotFound)
	}
	publish(req.Context(), s.Events, queue.NewTaskEvent(queue.TaskDeleted, req.UserID(), ids...))
	return BulkResult{Affected: res.Affected}, nil
}

// BulkMarkDoneTasks sets the status flag of every listed task the caller
// owns.
type BulkMarkDoneTasks struct {
	Tasks  TaskStore
	Events EventPublisher
}

func (s *BulkMarkDoneTasks) Execute(req *dispatch.Request) (BulkResult, error) {
	v := validator.New(req)
	ids, err := v.IDs("ids")
	if err != nil {
		return BulkResult{}, err
	}
	done, err := v.Bool("is_done", msgInvalidStatus)
	if err != nil {
		return BulkResult{}, err
	}
	res := s.Tasks.BulkSetDone(req.Context(), req.UserID(), ids, done)
	if !res.Success {
		return BulkResult{}, dbError("bulk mark tasks", res.Failure())
	}
	if res.Affected == 0 {
		return BulkResult{}, dispatch.NotFound(msgTasksNotFound)
	}
	if done {
		publish(req.Context(), s.Events, completed(req.UserID(), ids...))
	}
	return BulkResult{Affected: res.Affected}, nil
}

func completed(userID string, ids ...int64) queue.TaskEvent {
	ev := queue.NewTaskEvent(queue.TaskCompleted, userID, ids...)
	done := true
	ev.IsDone = &done
	return ev
}
