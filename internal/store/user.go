package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/Dani-Bcn/tareas-de-casa/internal/model"
)

type UserStore struct {
	db *sql.DB
}

func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db}
}

func scanUser(scanner interface{ Scan(...any) error }) (*model.User, error) {
	var u model.User
	var email, username, gender sql.NullString
	var parentID sql.NullInt64
	var birthDate sql.NullTime

	err := scanner.Scan(
		&u.ID, &u.Name, &email, &username, &u.Password, &u.Role,
		&u.Points, &parentID, &birthDate, &gender, &u.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	u.Email = email.String
	u.Username = username.String
	u.Gender = gender.String
	if parentID.Valid {
		u.ParentID = &parentID.Int64
	}
	if birthDate.Valid {
		u.BirthDate = &birthDate.Time
	}
	return &u, nil
}

const userCols = `id, name, email, username, password, role, points, parent_id, birth_date, gender, created_at`

func (s *UserStore) CreateParent(name, email, passwordHash string) (*model.User, error) {
	result, err := s.db.Exec(
		`INSERT INTO users (name, email, password, role) VALUES (?, ?, ?, ?)`,
		name, email, passwordHash, model.RoleParent,
	)
	if err != nil {
		return nil, fmt.Errorf("insert parent: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *UserStore) CreateChild(name, username, passwordHash string, birthDate time.Time, gender string, parentID int64) (*model.User, error) {
	result, err := s.db.Exec(
		`INSERT INTO users (name, username, password, role, parent_id, birth_date, gender) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		name, username, passwordHash, model.RoleChild, parentID, birthDate.UTC(), gender,
	)
	if err != nil {
		return nil, fmt.Errorf("insert child: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *UserStore) GetByID(id int64) (*model.User, error) {
	row := s.db.QueryRow(`SELECT `+userCols+` FROM users WHERE id = ?`, id)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

// GetParentByEmail looks up a PARENT account by its login identifier.
func (s *UserStore) GetParentByEmail(email string) (*model.User, error) {
	row := s.db.QueryRow(`SELECT `+userCols+` FROM users WHERE email = ? AND role = ?`, email, model.RoleParent)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get parent by email: %w", err)
	}
	return u, nil
}

// GetChildByUsername looks up a CHILD account by its login identifier.
func (s *UserStore) GetChildByUsername(username string) (*model.User, error) {
	row := s.db.QueryRow(`SELECT `+userCols+` FROM users WHERE username = ? AND role = ?`, username, model.RoleChild)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get child by username: %w", err)
	}
	return u, nil
}

// ListChildren returns all children of the given parent, ordered by name.
func (s *UserStore) ListChildren(parentID int64) ([]model.User, error) {
	rows, err := s.db.Query(
		`SELECT `+userCols+` FROM users WHERE parent_id = ? ORDER BY name ASC`,
		parentID,
	)
	if err != nil {
		return nil, fmt.Errorf("list children: %w", err)
	}
	defer rows.Close()

	var children []model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan child: %w", err)
		}
		children = append(children, *u)
	}
	return children, rows.Err()
}

// GetChildOfParent returns the child only if it belongs to the given parent.
func (s *UserStore) GetChildOfParent(childID, parentID int64) (*model.User, error) {
	row := s.db.QueryRow(
		`SELECT `+userCols+` FROM users WHERE id = ? AND parent_id = ?`,
		childID, parentID,
	)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get child of parent: %w", err)
	}
	return u, nil
}

// IdentifierExists reports whether the identifier collides with any
// username OR email across all users. The cross-field check keeps a child
// username from shadowing a parent email.
func (s *UserStore) IdentifierExists(identifier string) (bool, error) {
	var count int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM users WHERE username = ? OR email = ?`,
		identifier, identifier,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("check identifier: %w", err)
	}
	return count > 0, nil
}
