package store

import (
	"database/sql"
	"fmt"

	"github.com/Dani-Bcn/tareas-de-casa/internal/model"
)

type TaskStore struct {
	db *sql.DB
}

func NewTaskStore(db *sql.DB) *TaskStore {
	return &TaskStore{db: db}
}

func scanTask(scanner interface{ Scan(...any) error }) (*model.Task, error) {
	var t model.Task
	var completed int

	err := scanner.Scan(
		&t.ID, &t.Title, &t.Description, &t.Points, &completed,
		&t.ChildID, &t.ParentID, &t.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	t.Completed = completed != 0
	return &t, nil
}

const taskCols = `id, title, description, points, completed, child_id, parent_id, created_at`

func (s *TaskStore) Create(title, description string, points int, childID, parentID int64) (*model.Task, error) {
	result, err := s.db.Exec(
		`INSERT INTO tasks (title, description, points, child_id, parent_id) VALUES (?, ?, ?, ?, ?)`,
		title, description, points, childID, parentID,
	)
	if err != nil {
		return nil, fmt.Errorf("insert task: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetWithChild(id)
}

func (s *TaskStore) GetByID(id int64) (*model.Task, error) {
	row := s.db.QueryRow(`SELECT `+taskCols+` FROM tasks WHERE id = ?`, id)
	t, err := scanTask(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}
	return t, nil
}

// GetWithChild returns the task joined with the assigned child's {id, name}.
func (s *TaskStore) GetWithChild(id int64) (*model.Task, error) {
	row := s.db.QueryRow(
		`SELECT t.id, t.title, t.description, t.points, t.completed, t.child_id, t.parent_id, t.created_at, c.name
		 FROM tasks t JOIN users c ON c.id = t.child_id
		 WHERE t.id = ?`,
		id,
	)

	var t model.Task
	var completed int
	var childName string
	err := row.Scan(
		&t.ID, &t.Title, &t.Description, &t.Points, &completed,
		&t.ChildID, &t.ParentID, &t.CreatedAt, &childName,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get task with child: %w", err)
	}
	t.Completed = completed != 0
	t.Child = &model.UserRef{ID: t.ChildID, Name: childName}
	return &t, nil
}

// ListByParent returns all tasks created by the parent, newest first, each
// joined with the assigned child's {id, name}.
func (s *TaskStore) ListByParent(parentID int64) ([]model.Task, error) {
	rows, err := s.db.Query(
		`SELECT t.id, t.title, t.description, t.points, t.completed, t.child_id, t.parent_id, t.created_at, c.name
		 FROM tasks t JOIN users c ON c.id = t.child_id
		 WHERE t.parent_id = ?
		 ORDER BY t.created_at DESC, t.id DESC`,
		parentID,
	)
	if err != nil {
		return nil, fmt.Errorf("list tasks by parent: %w", err)
	}
	defer rows.Close()

	var tasks []model.Task
	for rows.Next() {
		var t model.Task
		var completed int
		var childName string
		if err := rows.Scan(
			&t.ID, &t.Title, &t.Description, &t.Points, &completed,
			&t.ChildID, &t.ParentID, &t.CreatedAt, &childName,
		); err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		t.Completed = completed != 0
		t.Child = &model.UserRef{ID: t.ChildID, Name: childName}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// ListByChild returns all tasks assigned to the child, newest first, each
// joined with the creating parent's {id, name}.
func (s *TaskStore) ListByChild(childID int64) ([]model.Task, error) {
	rows, err := s.db.Query(
		`SELECT t.id, t.title, t.description, t.points, t.completed, t.child_id, t.parent_id, t.created_at, p.name
		 FROM tasks t JOIN users p ON p.id = t.parent_id
		 WHERE t.child_id = ?
		 ORDER BY t.created_at DESC, t.id DESC`,
		childID,
	)
	if err != nil {
		return nil, fmt.Errorf("list tasks by child: %w", err)
	}
	defer rows.Close()

	var tasks []model.Task
	for rows.Next() {
		var t model.Task
		var completed int
		var parentName string
		if err := rows.Scan(
			&t.ID, &t.Title, &t.Description, &t.Points, &completed,
			&t.ChildID, &t.ParentID, &t.CreatedAt, &parentName,
		); err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		t.Completed = completed != 0
		t.Parent = &model.UserRef{ID: t.ParentID, Name: parentName}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// SetCompleted flips the completed flag and applies the matching point
// delta to the assigned child in a single transaction: false→true credits
// the task's points, true→false debits them, no-op transitions touch
// nothing. The relative points update avoids read-modify-write races
// between concurrent requests.
func (s *TaskStore) SetCompleted(id int64, completed bool) (*model.Task, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var wasCompleted, points int
	var childID int64
	err = tx.QueryRow(`SELECT completed, points, child_id FROM tasks WHERE id = ?`, id).
		Scan(&wasCompleted, &points, &childID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get task for update: %w", err)
	}

	delta := 0
	switch {
	case completed && wasCompleted == 0:
		delta = points
	case !completed && wasCompleted != 0:
		delta = -points
	}

	if delta != 0 {
		if _, err := tx.Exec(`UPDATE users SET points = points + ? WHERE id = ?`, delta, childID); err != nil {
			return nil, fmt.Errorf("adjust points: %w", err)
		}
	}

	c := 0
	if completed {
		c = 1
	}
	if _, err := tx.Exec(`UPDATE tasks SET completed = ? WHERE id = ?`, c, id); err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return s.GetWithChild(id)
}

// Delete removes the task. A completed task first has its point credit
// reversed on the child, in the same transaction as the delete.
func (s *TaskStore) Delete(id int64) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var completed, points int
	var childID int64
	err = tx.QueryRow(`SELECT completed, points, child_id FROM tasks WHERE id = ?`, id).
		Scan(&completed, &points, &childID)
	if err == sql.ErrNoRows {
		return sql.ErrNoRows
	}
	if err != nil {
		return fmt.Errorf("get task for delete: %w", err)
	}

	if completed != 0 {
		if _, err := tx.Exec(`UPDATE users SET points = points - ? WHERE id = ?`, points, childID); err != nil {
			return fmt.Errorf("reverse points: %w", err)
		}
	}

	if _, err := tx.Exec(`DELETE FROM tasks WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete task: %w", err)
	}

	return tx.Commit()
}
