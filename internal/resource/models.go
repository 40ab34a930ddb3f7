package resource

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// PaymentStatus is the payment lifecycle. Refunded is terminal: a refunded
// payment is immune to update and refund for every caller.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentRefunded  PaymentStatus = "refunded"
)

// PayableKind names the entity a payment settles. Resolved explicitly,
// never via runtime type-string dispatch.
type PayableKind string

const (
	PayableSale    PayableKind = "sale"
	PayableSalary  PayableKind = "salary"
	PayableExpense PayableKind = "expense"
)

// Payment records money received or paid within a project, under the POS
// module.
type Payment struct {
	ID          snowflake.ID  `gorm:"primaryKey"`
	ProjectRef  snowflake.ID  `gorm:"column:project_id;not null;index"`
	PayableKind PayableKind   `gorm:"column:payable_kind;type:text;not null"`
	PayableID   snowflake.ID  `gorm:"column:payable_id;not null"`
	AmountCents int64         `gorm:"column:amount_cents;not null"`
	Currency    string        `gorm:"type:text;not null"`
	Status      PaymentStatus `gorm:"type:text;not null;default:'pending'"`
	CreatedAt   time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt   time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Payment) TableName() string { return "payments" }

func (p *Payment) ProjectID() snowflake.ID { return p.ProjectRef }
func (p *Payment) ModuleKey() string       { return "pos" }

// SaleStatus is the sale lifecycle; cancelled sales are excluded from
// otherwise-permitted update and delete actions.
type SaleStatus string

const (
	SaleOpen      SaleStatus = "open"
	SaleCompleted SaleStatus = "completed"
	SaleCancelled SaleStatus = "cancelled"
)

// Sale is a POS order header.
type Sale struct {
	ID         snowflake.ID `gorm:"primaryKey"`
	ProjectRef snowflake.ID `gorm:"column:project_id;not null;index"`
	Status     SaleStatus   `gorm:"type:text;not null;default:'open'"`
	TotalCents int64        `gorm:"column:total_cents;not null;default:0"`
	CreatedAt  time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt  time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Sale) TableName() string { return "sales" }

func (s *Sale) ProjectID() snowflake.ID { return s.ProjectRef }
func (s *Sale) ModuleKey() string       { return "pos" }

// Worker is an HR record, optionally linked to a platform user account.
// The link powers the worker-self bypass on task checks.
type Worker struct {
	ID         snowflake.ID  `gorm:"primaryKey"`
	ProjectRef snowflake.ID  `gorm:"column:project_id;not null;index"`
	UserID     *snowflake.ID `gorm:"column:user_id;index"`
	FullName   string        `gorm:"column:full_name;type:text;not null"`
	CreatedAt  time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt  time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Worker) TableName() string { return "workers" }

func (w *Worker) ProjectID() snowflake.ID { return w.ProjectRef }
func (w *Worker) ModuleKey() string       { return "hr" }

// TaskStatus is the task lifecycle.
type TaskStatus string

const (
	TaskOpen TaskStatus = "open"
	TaskDone TaskStatus = "done"
)

// Task is a unit of work assigned to a worker, under the tasks module.
type Task struct {
	ID         snowflake.ID `gorm:"primaryKey"`
	ProjectRef snowflake.ID `gorm:"column:project_id;not null;index"`
	WorkerID   snowflake.ID `gorm:"column:worker_id;not null;index"`
	Title      string       `gorm:"type:text;not null"`
	Status     TaskStatus   `gorm:"type:text;not null;default:'open'"`
	CreatedAt  time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt  time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`

	Worker *Worker `gorm:"foreignKey:WorkerID"`
}

// TableName sets the database table name.
func (Task) TableName() string { return "tasks" }

func (t *Task) ProjectID() snowflake.ID { return t.ProjectRef }
func (t *Task) ModuleKey() string       { return "tasks" }

// AssigneeUserID returns the linked user account of the task's worker, or
// 0 when the worker is not loaded or not linked.
func (t *Task) AssigneeUserID() snowflake.ID {
	if t.Worker == nil || t.Worker.UserID == nil {
		return 0
	}
	return *t.Worker.UserID
}
