package infra

import (
	"errors"
	"sync"
	"time"
)

// Circuit breaker Closed → Open → Half-Open. Protege el envío SMTP: si el
// servidor de correo no responde, los workers fallan rápido en vez de colgar
// una goroutine por job.

// CBState representa el estado actual del breaker.
type CBState int

const (
	CBClosed   CBState = iota // operación normal
	CBOpen                    // disparado, todo falla de inmediato
	CBHalfOpen                // sondeo, se permite un request de prueba
)

func (s CBState) String() string {
	switch s {
	case CBClosed:
		return "closed"
	case CBOpen:
		return "open"
	case CBHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// ErrCircuitOpen se devuelve cuando Execute se llama con el breaker abierto.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// CircuitBreakerConfig agrupa los parámetros ajustables.
type CircuitBreakerConfig struct {
	FailureThreshold int           // fallas consecutivas para abrir
	SuccessThreshold int           // éxitos consecutivos en half-open para cerrar
	OpenTimeout      time.Duration // tiempo abierto antes de sondear
}

// DefaultCBConfig devuelve los valores usados para el breaker de SMTP.
func DefaultCBConfig() CircuitBreakerConfig {
	return CircuitBreakerConfig{
		FailureThreshold: 5,
		SuccessThreshold: 2,
		OpenTimeout:      60 * time.Second,
	}
}

// CircuitBreaker implementa el patrón con transiciones thread-safe.
type CircuitBreaker struct {
	mu               sync.Mutex
	state            CBState
	failureCount     int
	successCount     int
	lastFailureTime  time.Time
	failureThreshold int
	successThreshold int
	openTimeout      time.Duration
}

// NewCircuitBreaker crea un breaker en estado Closed.
func NewCircuitBreaker(cfg CircuitBreakerConfig) *CircuitBreaker {
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = 5
	}
	if cfg.SuccessThreshold <= 0 {
		cfg.SuccessThreshold = 2
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = 60 * time.Second
	}
	return &CircuitBreaker{
		state:            CBClosed,
		failureThreshold: cfg.FailureThreshold,
		successThreshold: cfg.SuccessThreshold,
		openTimeout:      cfg.OpenTimeout,
	}
}

// State devuelve el estado actual (seguro para lecturas concurrentes).
func (cb *CircuitBreaker) State() CBState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	if cb.state == CBOpen && time.Since(cb.lastFailureTime) >= cb.openTimeout {
		cb.state = CBHalfOpen
		cb.successCount = 0
	}
	return cb.state
}

// Execute corre fn a través del breaker. Devuelve ErrCircuitOpen de inmediato
// si está abierto.
func (cb *CircuitBreaker) Execute(fn func() error) error {
	if cb.State() == CBOpen {
		return ErrCircuitOpen
	}

	err := fn()

	cb.mu.Lock()
	defer cb.mu.Unlock()

	if err != nil {
		cb.onFailure()
		return err
	}
	cb.onSuccess()
	return nil
}

// onFailure registra una falla (llamar bajo lock).
func (cb *CircuitBreaker) onFailure() {
	cb.failureCount++
	cb.lastFailureTime = time.Now()

	switch cb.state {
	case CBClosed:
		if cb.failureCount >= cb.failureThreshold {
			cb.state = CBOpen
			cb.successCount = 0
		}
	case CBHalfOpen:
		cb.state = CBOpen
		cb.failureCount = 0
	}
}

// onSuccess registra un éxito (llamar bajo lock).
func (cb *CircuitBreaker) onSuccess() {
	switch cb.state {
	case CBClosed:
		cb.failureCount = 0
	case CBHalfOpen:
		cb.successCount++
		if cb.successCount >= cb.successThreshold {
			cb.state = CBClosed
			cb.failureCount = 0
			cb.successCount = 0
		}
	}
}
