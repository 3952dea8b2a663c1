package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Handler: o corpo de um job. Devolve quantos itens processou.
type Handler func(ctx context.Context) (count int, err error)

// Result: último desfecho de um job.
// Em falha, Message carrega "Error: ..."; é o que o status expõe.
type Result struct {
	OK      bool      `json:"ok"`
	Message string    `json:"message"`
	Count   int       `json:"count"`
	At      time.Time `json:"at"`
}

type job struct {
	name     string
	expr     string
	schedule cron.Schedule
	handler  Handler

	running    bool
	lastRun    time.Time
	lastResult *Result
	nextRun    time.Time
}

// JobStatus: visão externa de um job (GET /jobs/{name}/status)
type JobStatus struct {
	Name       string     `json:"name"`
	Expr       string     `json:"expr"`
	Running    bool       `json:"running"`
	LastRun    *time.Time `json:"last_run,omitempty"`
	NextRun    time.Time  `json:"next_run"`
	LastResult *Result    `json:"last_result,omitempty"`
}

// ResultHook roda após cada execução (métricas, digest de falha por email)
type ResultHook func(jobName string, result Result)

// Scheduler: registro de jobs cron avaliados numa timezone fixa,
// nunca na timezone da máquina. Garantia central: no máximo UMA execução
// concorrente por job; disparo sobreposto é descartado, não enfileirado.
type Scheduler struct {
	mu       sync.Mutex
	loc      *time.Location
	jobs     map[string]*job
	order    []string
	now      func() time.Time
	tick     time.Duration
	OnResult ResultHook
}

func New(loc *time.Location) *Scheduler {
	if loc == nil {
		loc = time.UTC
	}
	return &Scheduler{
		loc:  loc,
		jobs: make(map[string]*job),
		now:  time.Now,
		tick: 15 * time.Second,
	}
}

// NextFire: função pura (expressão, instante de referência, timezone) →
// próximo disparo. Não consulta relógio nem estado.
func NextFire(schedule cron.Schedule, ref time.Time, loc *time.Location) time.Time {
	return schedule.Next(ref.In(loc))
}

// Register cadastra um job. Chamado uma vez no boot do processo.
func (s *Scheduler) Register(name, expr string, handler Handler) error {
	schedule, err := cron.ParseStandard(expr)
	if err != nil {
		return fmt.Errorf("expressão cron inválida em %s (%q): %w", name, expr, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.jobs[name]; exists {
		return fmt.Errorf("job %s já registrado", name)
	}

	s.jobs[name] = &job{
		name:     name,
		expr:     expr,
		schedule: schedule,
		handler:  handler,
		nextRun:  NextFire(schedule, s.now(), s.loc),
	}
	s.order = append(s.order, name)
	return nil
}

// Start roda o loop de disparo até o contexto ser cancelado.
func (s *Scheduler) Start(ctx context.Context) {
	log.Printf("🕒 Scheduler iniciado (%d jobs, tz=%s)", len(s.order), s.loc)

	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("⚠️ Scheduler encerrado")
			return
		case <-ticker.C:
			s.fireDue(ctx)
		}
	}
}

func (s *Scheduler) fireDue(ctx context.Context) {
	now := s.now()

	s.mu.Lock()
	var due []*job
	for _, name := range s.order {
		j := s.jobs[name]
		if !j.nextRun.After(now) {
			j.nextRun = NextFire(j.schedule, now, s.loc)
			due = append(due, j)
		}
	}
	s.mu.Unlock()

	for _, j := range due {
		go s.run(ctx, j)
	}
}

// Trigger: gatilho manual/administrativo. Passa pelo MESMO ponto de
// entrada guardado do disparo cron, sem bypass da guarda de concorrência.
// Devolve "started" ou "skipped".
func (s *Scheduler) Trigger(ctx context.Context, name string) (string, error) {
	s.mu.Lock()
	j, ok := s.jobs[name]
	s.mu.Unlock()
	if !ok {
		return "", fmt.Errorf("job desconhecido: %s", name)
	}

	if !s.tryAcquire(j) {
		return "skipped", nil
	}
	go s.execute(ctx, j)
	return "started", nil
}

func (s *Scheduler) run(ctx context.Context, j *job) {
	if !s.tryAcquire(j) {
		log.Printf("⏭️ [Scheduler] %s ainda rodando, disparo descartado", j.name)
		return
	}
	s.execute(ctx, j)
}

// tryAcquire: a guarda. Idle → Running, ou recusa se já está Running.
func (s *Scheduler) tryAcquire(j *job) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if j.running {
		return false
	}
	j.running = true
	return true
}

func (s *Scheduler) execute(ctx context.Context, j *job) {
	startedAt := s.now()
	log.Printf("▶️ [Scheduler] %s iniciado", j.name)

	count, err := j.handler(ctx)

	result := Result{Count: count, At: s.now()}
	if err != nil {
		result.OK = false
		result.Message = fmt.Sprintf("Error: %v", err)
		log.Printf("❌ [Scheduler] %s falhou: %v", j.name, err)
	} else {
		result.OK = true
		result.Message = fmt.Sprintf("%d processados", count)
		log.Printf("✅ [Scheduler] %s concluído: %d processados", j.name, count)
	}

	s.mu.Lock()
	j.running = false
	j.lastRun = startedAt
	j.lastResult = &result
	hook := s.OnResult
	s.mu.Unlock()

	if hook != nil {
		hook(j.name, result)
	}
}

// Status expõe o estado de um job. NextRun é recomputado na hora,
// em cima da timezone fixa.
func (s *Scheduler) Status(name string) (*JobStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	j, ok := s.jobs[name]
	if !ok {
		return nil, fmt.Errorf("job desconhecido: %s", name)
	}

	status := &JobStatus{
		Name:       j.name,
		Expr:       j.expr,
		Running:    j.running,
		NextRun:    NextFire(j.schedule, s.now(), s.loc),
		LastResult: j.lastResult,
	}
	if !j.lastRun.IsZero() {
		lastRun := j.lastRun
		status.LastRun = &lastRun
	}
	return status, nil
}

// Jobs lista os nomes registrados, na ordem de registro.
func (s *Scheduler) Jobs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.order...)
}
