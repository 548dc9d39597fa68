package employee

import (
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Module wires the employee resource into the API router.
type Module struct {
	handler *Handler
}

// NewModule creates the employee Module. Panics if h is nil.
func NewModule(h *Handler) *Module {
	if h == nil {
		panic("employee.NewModule: handler must not be nil")
	}
	return &Module{handler: h}
}

// RegisterRoutes registers employee routes. All of them require a session.
func (m *Module) RegisterRoutes(public, protected *gin.RouterGroup) {
	protected.POST("/employees", m.handler.Create)
	protected.GET("/employees/:id", m.handler.Get)
	protected.GET("/employees", m.handler.List)
	protected.PUT("/employees/:id", m.handler.Update)
	protected.DELETE("/employees/:id", m.handler.Delete)
}

// Seed inserts a deterministic demo dataset, skipping rows that already
// exist so restarts stay idempotent.
func Seed(db *gorm.DB) error {
	hired := time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC)
	rows := []Employee{
		{Name: "Kim Seaton", Email: "kim@example.com", Active: true, Salary: 84000, LocationID: "loc-1", HiredAt: hired},
		{Name: "Lee Ramos", Email: "lee@example.com", Active: true, Salary: 72000, LocationID: "loc-1", HiredAt: hired.AddDate(0, 2, 0)},
		{Name: "Ada Okafor", Email: "ada@example.com", Active: false, Salary: 91000, LocationID: "loc-2", HiredAt: hired.AddDate(0, 5, 10)},
		{Name: "Sam Petrov", Email: "sam@example.com", Active: true, Salary: 64000, LocationID: "loc-2", HiredAt: hired.AddDate(1, 0, 0)},
		{Name: "Noor Haddad", Email: "noor@example.com", Active: true, Salary: 88000, LocationID: "loc-1", HiredAt: hired.AddDate(1, 3, 2)},
	}
	return db.Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error
}
