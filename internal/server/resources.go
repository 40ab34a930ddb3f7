package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/crewbase/crewbase/internal/resource"
)

type paymentView struct {
	ID          string          `json:"id"`
	PayableKind string          `json:"payable_kind"`
	PayableID   string          `json:"payable_id"`
	AmountCents int64           `json:"amount_cents"`
	Currency    string          `json:"currency"`
	Status      string          `json:"status"`
	Can         map[string]bool `json:"can"`
}

func (s *Server) viewPayment(c *gin.Context, p *resource.Payment) paymentView {
	return paymentView{
		ID:          p.ID.String(),
		PayableKind: string(p.PayableKind),
		PayableID:   p.PayableID.String(),
		AmountCents: p.AmountCents,
		Currency:    p.Currency,
		Status:      string(p.Status),
		Can:         s.authz.PaymentFlags(c.Request.Context(), currentUser(c), p),
	}
}

func (s *Server) ListPayments(c *gin.Context) {
	project := currentProject(c)
	payments, err := s.resources.ListPayments(c.Request.Context(), project.ID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	out := make([]paymentView, 0, len(payments))
	for i := range payments {
		out = append(out, s.viewPayment(c, &payments[i]))
	}
	c.JSON(http.StatusOK, gin.H{"payments": out})
}

type createPaymentRequest struct {
	PayableKind string `json:"payable_kind" binding:"required"`
	PayableID   string `json:"payable_id" binding:"required"`
	AmountCents int64  `json:"amount_cents" binding:"required"`
	Currency    string `json:"currency" binding:"required"`
}

func (s *Server) CreatePayment(c *gin.Context) {
	var req createPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	switch resource.PayableKind(req.PayableKind) {
	case resource.PayableSale, resource.PayableSalary, resource.PayableExpense:
	default:
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	payableID, err := parseSnowflake(req.PayableID)
	if err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	project := currentProject(c)
	payment := &resource.Payment{
		ID:          s.genID.Generate(),
		ProjectRef:  project.ID,
		PayableKind: resource.PayableKind(req.PayableKind),
		PayableID:   payableID,
		AmountCents: req.AmountCents,
		Currency:    req.Currency,
		Status:      resource.PaymentPending,
	}
	if err := s.resources.CreatePayment(c.Request.Context(), payment); err != nil {
		AbortWithError(c, err)
		return
	}
	s.recordActivity(c, "payment.created", "payment", payment.ID.String(), "pos")
	c.JSON(http.StatusCreated, gin.H{"payment": s.viewPayment(c, payment)})
}

type updatePaymentRequest struct {
	AmountCents *int64  `json:"amount_cents"`
	Currency    *string `json:"currency"`
	Status      *string `json:"status"`
}

func (s *Server) UpdatePayment(c *gin.Context) {
	payment, ok := s.loadPayment(c)
	if !ok {
		return
	}
	if !s.authz.CanUpdatePayment(c.Request.Context(), currentUser(c), payment) {
		AbortWithError(c, ErrForbidden)
		return
	}

	var req updatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	if req.AmountCents != nil {
		payment.AmountCents = *req.AmountCents
	}
	if req.Currency != nil {
		payment.Currency = *req.Currency
	}
	if req.Status != nil {
		switch resource.PaymentStatus(*req.Status) {
		case resource.PaymentPending, resource.PaymentCompleted:
			payment.Status = resource.PaymentStatus(*req.Status)
		default:
			AbortWithError(c, ErrInvalidRequest)
			return
		}
	}

	if err := s.resources.SavePayment(c.Request.Context(), payment); err != nil {
		AbortWithError(c, err)
		return
	}
	s.recordActivity(c, "payment.updated", "payment", payment.ID.String(), "pos")
	c.JSON(http.StatusOK, gin.H{"payment": s.viewPayment(c, payment)})
}

func (s *Server) RefundPayment(c *gin.Context) {
	payment, ok := s.loadPayment(c)
	if !ok {
		return
	}
	if !s.authz.CanRefundPayment(c.Request.Context(), currentUser(c), payment) {
		AbortWithError(c, ErrForbidden)
		return
	}

	payment.Status = resource.PaymentRefunded
	if err := s.resources.SavePayment(c.Request.Context(), payment); err != nil {
		AbortWithError(c, err)
		return
	}
	s.recordActivity(c, "payment.refunded", "payment", payment.ID.String(), "pos")
	c.JSON(http.StatusOK, gin.H{"payment": s.viewPayment(c, payment)})
}

func (s *Server) ReinstatePayment(c *gin.Context) {
	payment, ok := s.loadPayment(c)
	if !ok {
		return
	}
	if !s.authz.CanReinstatePayment(c.Request.Context(), currentUser(c), payment) {
		AbortWithError(c, ErrForbidden)
		return
	}

	payment.Status = resource.PaymentCompleted
	if err := s.resources.SavePayment(c.Request.Context(), payment); err != nil {
		AbortWithError(c, err)
		return
	}
	s.recordActivity(c, "payment.reinstated", "payment", payment.ID.String(), "pos")
	c.JSON(http.StatusOK, gin.H{"payment": s.viewPayment(c, payment)})
}

func (s *Server) loadPayment(c *gin.Context) (*resource.Payment, bool) {
	id, ok := pathID(c, "id")
	if !ok {
		return nil, false
	}
	project := currentProject(c)
	payment, err := s.resources.FindPayment(c.Request.Context(), project.ID, id)
	if err != nil {
		AbortWithError(c, err)
		return nil, false
	}
	return payment, true
}

type saleView struct {
	ID         string          `json:"id"`
	Status     string          `json:"status"`
	TotalCents int64           `json:"total_cents"`
	Can        map[string]bool `json:"can"`
}

func (s *Server) viewSale(c *gin.Context, sale *resource.Sale) saleView {
	return saleView{
		ID:         sale.ID.String(),
		Status:     string(sale.Status),
		TotalCents: sale.TotalCents,
		Can:        s.authz.SaleFlags(c.Request.Context(), currentUser(c), sale),
	}
}

func (s *Server) ListSales(c *gin.Context) {
	project := currentProject(c)
	sales, err := s.resources.ListSales(c.Request.Context(), project.ID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	out := make([]saleView, 0, len(sales))
	for i := range sales {
		out = append(out, s.viewSale(c, &sales[i]))
	}
	c.JSON(http.StatusOK, gin.H{"sales": out})
}

type createSaleRequest struct {
	TotalCents int64 `json:"total_cents"`
}

func (s *Server) CreateSale(c *gin.Context) {
	var req createSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	project := currentProject(c)
	sale := &resource.Sale{
		ID:         s.genID.Generate(),
		ProjectRef: project.ID,
		Status:     resource.SaleOpen,
		TotalCents: req.TotalCents,
	}
	if err := s.resources.CreateSale(c.Request.Context(), sale); err != nil {
		AbortWithError(c, err)
		return
	}
	s.recordActivity(c, "sale.created", "sale", sale.ID.String(), "pos")
	c.JSON(http.StatusCreated, gin.H{"sale": s.viewSale(c, sale)})
}

type updateSaleRequest struct {
	TotalCents *int64  `json:"total_cents"`
	Status     *string `json:"status"`
}

func (s *Server) UpdateSale(c *gin.Context) {
	sale, ok := s.loadSale(c)
	if !ok {
		return
	}
	if !s.authz.CanUpdateSale(c.Request.Context(), currentUser(c), sale) {
		AbortWithError(c, ErrForbidden)
		return
	}

	var req updateSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	if req.TotalCents != nil {
		sale.TotalCents = *req.TotalCents
	}
	if req.Status != nil {
		switch resource.SaleStatus(*req.Status) {
		case resource.SaleOpen, resource.SaleCompleted:
			sale.Status = resource.SaleStatus(*req.Status)
		default:
			AbortWithError(c, ErrInvalidRequest)
			return
		}
	}

	if err := s.resources.SaveSale(c.Request.Context(), sale); err != nil {
		AbortWithError(c, err)
		return
	}
	s.recordActivity(c, "sale.updated", "sale", sale.ID.String(), "pos")
	c.JSON(http.StatusOK, gin.H{"sale": s.viewSale(c, sale)})
}

func (s *Server) CancelSale(c *gin.Context) {
	sale, ok := s.loadSale(c)
	if !ok {
		return
	}
	if !s.authz.CanCancelSale(c.Request.Context(), currentUser(c), sale) {
		AbortWithError(c, ErrForbidden)
		return
	}

	sale.Status = resource.SaleCancelled
	if err := s.resources.SaveSale(c.Request.Context(), sale); err != nil {
		AbortWithError(c, err)
		return
	}
	s.recordActivity(c, "sale.cancelled", "sale", sale.ID.String(), "pos")
	c.JSON(http.StatusOK, gin.H{"sale": s.viewSale(c, sale)})
}

func (s *Server) DeleteSale(c *gin.Context) {
	sale, ok := s.loadSale(c)
	if !ok {
		return
	}
	if !s.authz.CanDeleteSale(c.Request.Context(), currentUser(c), sale) {
		AbortWithError(c, ErrForbidden)
		return
	}

	project := currentProject(c)
	if err := s.resources.DeleteSale(c.Request.Context(), project.ID, sale.ID); err != nil {
		AbortWithError(c, err)
		return
	}
	s.recordActivity(c, "sale.deleted", "sale", sale.ID.String(), "pos")
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

func (s *Server) loadSale(c *gin.Context) (*resource.Sale, bool) {
	id, ok := pathID(c, "id")
	if !ok {
		return nil, false
	}
	project := currentProject(c)
	sale, err := s.resources.FindSale(c.Request.Context(), project.ID, id)
	if err != nil {
		AbortWithError(c, err)
		return nil, false
	}
	return sale, true
}

func (s *Server) ListWorkers(c *gin.Context) {
	project := currentProject(c)
	workers, err := s.resources.ListWorkers(c.Request.Context(), project.ID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	type worker struct {
		ID       string  `json:"id"`
		FullName string  `json:"full_name"`
		UserID   *string `json:"user_id,omitempty"`
	}
	out := make([]worker, 0, len(workers))
	for _, w := range workers {
		v := worker{ID: w.ID.String(), FullName: w.FullName}
		if w.UserID != nil {
			id := w.UserID.String()
			v.UserID = &id
		}
		out = append(out, v)
	}
	c.JSON(http.StatusOK, gin.H{"workers": out})
}

type createWorkerRequest struct {
	FullName string  `json:"full_name" binding:"required"`
	UserID   *string `json:"user_id"`
}

func (s *Server) CreateWorker(c *gin.Context) {
	var req createWorkerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	project := currentProject(c)
	worker := &resource.Worker{
		ID:         s.genID.Generate(),
		ProjectRef: project.ID,
		FullName:   req.FullName,
	}
	if req.UserID != nil {
		id, err := parseSnowflake(*req.UserID)
		if err != nil {
			AbortWithError(c, ErrInvalidRequest)
			return
		}
		worker.UserID = &id
	}
	if err := s.resources.CreateWorker(c.Request.Context(), worker); err != nil {
		AbortWithError(c, err)
		return
	}
	s.recordActivity(c, "worker.created", "worker", worker.ID.String(), "hr")
	c.JSON(http.StatusCreated, gin.H{"id": worker.ID.String()})
}

type taskView struct {
	ID       string          `json:"id"`
	Title    string          `json:"title"`
	Status   string          `json:"status"`
	WorkerID string          `json:"worker_id"`
	Can      map[string]bool `json:"can"`
}

func (s *Server) viewTask(c *gin.Context, t *resource.Task) taskView {
	return taskView{
		ID:       t.ID.String(),
		Title:    t.Title,
		Status:   string(t.Status),
		WorkerID: t.WorkerID.String(),
		Can:      s.authz.TaskFlags(c.Request.Context(), currentUser(c), t),
	}
}

func (s *Server) ListTasks(c *gin.Context) {
	project := currentProject(c)
	tasks, err := s.resources.ListTasks(c.Request.Context(), project.ID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	out := make([]taskView, 0, len(tasks))
	for i := range tasks {
		out = append(out, s.viewTask(c, &tasks[i]))
	}
	c.JSON(http.StatusOK, gin.H{"tasks": out})
}

type createTaskRequest struct {
	Title    string `json:"title" binding:"required"`
	WorkerID string `json:"worker_id" binding:"required"`
}

func (s *Server) CreateTask(c *gin.Context) {
	var req createTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	workerID, err := parseSnowflake(req.WorkerID)
	if err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	project := currentProject(c)
	if _, err := s.resources.FindWorker(c.Request.Context(), project.ID, workerID); err != nil {
		AbortWithError(c, err)
		return
	}

	task := &resource.Task{
		ID:         s.genID.Generate(),
		ProjectRef: project.ID,
		WorkerID:   workerID,
		Title:      req.Title,
		Status:     resource.TaskOpen,
	}
	if err := s.resources.CreateTask(c.Request.Context(), task); err != nil {
		AbortWithError(c, err)
		return
	}
	s.recordActivity(c, "task.created", "task", task.ID.String(), "tasks")
	c.JSON(http.StatusCreated, gin.H{"task": s.viewTask(c, task)})
}

// GetTask is reachable by the assigned worker even without task.view,
// which is why it has no RequirePermission in the route table.
func (s *Server) GetTask(c *gin.Context) {
	task, ok := s.loadTask(c)
	if !ok {
		return
	}
	if !s.authz.CanViewTask(c.Request.Context(), currentUser(c), task) {
		AbortWithError(c, ErrForbidden)
		return
	}
	c.JSON(http.StatusOK, gin.H{"task": s.viewTask(c, task)})
}

func (s *Server) CompleteTask(c *gin.Context) {
	task, ok := s.loadTask(c)
	if !ok {
		return
	}
	if !s.authz.CanCompleteTask(c.Request.Context(), currentUser(c), task) {
		AbortWithError(c, ErrForbidden)
		return
	}

	task.Status = resource.TaskDone
	if err := s.resources.SaveTask(c.Request.Context(), task); err != nil {
		AbortWithError(c, err)
		return
	}
	s.recordActivity(c, "task.completed", "task", task.ID.String(), "tasks")
	c.JSON(http.StatusOK, gin.H{"task": s.viewTask(c, task)})
}

func (s *Server) DeleteTask(c *gin.Context) {
	task, ok := s.loadTask(c)
	if !ok {
		return
	}
	project := currentProject(c)
	if err := s.resources.DeleteTask(c.Request.Context(), project.ID, task.ID); err != nil {
		AbortWithError(c, err)
		return
	}
	s.recordActivity(c, "task.deleted", "task", task.ID.String(), "tasks")
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

func (s *Server) loadTask(c *gin.Context) (*resource.Task, bool) {
	id, ok := pathID(c, "id")
	if !ok {
		return nil, false
	}
	project := currentProject(c)
	task, err := s.resources.FindTask(c.Request.Context(), project.ID, id)
	if err != nil {
		AbortWithError(c, err)
		return nil, false
	}
	return task, true
}
