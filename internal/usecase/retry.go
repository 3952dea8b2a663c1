package usecase

import (
	"context"
	"time"
)

// RetryPolicy: retry explícito com backoff exponencial.
// Sleep é injetável para os testes não esperarem relógio de verdade.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Multiplier  float64
	Sleep       func(time.Duration)
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 3,
		BaseDelay:   2 * time.Second,
		Multiplier:  2.0,
		Sleep:       time.Sleep,
	}
}

// Delay: base × multiplier^attempt (attempt começa em 0)
func (p RetryPolicy) Delay(attempt int) time.Duration {
	delay := float64(p.BaseDelay)
	for i := 0; i < attempt; i++ {
		delay *= p.Multiplier
	}
	return time.Duration(delay)
}

// Run executa op até MaxAttempts, dormindo entre tentativas.
// Erro permanente interrompe na hora. Devolve quantas tentativas rodaram
// e o último erro (já classificado).
func (p RetryPolicy) Run(ctx context.Context, op func() error) (attempts int, err error) {
	maxAttempts := p.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	sleep := p.Sleep
	if sleep == nil {
		sleep = time.Sleep
	}

	for attempt := 0; attempt < maxAttempts; attempt++ {
		attempts = attempt + 1

		if ctx.Err() != nil {
			return attempts, ClassifyIntegrationError(ctx.Err())
		}

		err = op()
		if err == nil {
			return attempts, nil
		}

		err = ClassifyIntegrationError(err)
		if IsPermanent(err) {
			return attempts, err
		}

		if attempt < maxAttempts-1 {
			sleep(p.Delay(attempt))
		}
	}

	return attempts, err
}
