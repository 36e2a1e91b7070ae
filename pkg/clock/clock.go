// Package clock abstrai o tempo para que timers possam ser controlados em testes.
package clock

import "time"

// Clock é a fonte de tempo usada pelos agendadores
type Clock interface {
	Now() time.Time
	Since(t time.Time) time.Duration
	After(d time.Duration) <-chan time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

// Timer é um agendamento cancelável
type Timer interface {
	Stop() bool
}

type realClock struct{}

// Real retorna o relógio do sistema
func Real() Clock {
	return realClock{}
}

func (realClock) Now() time.Time                         { return time.Now() }
func (realClock) Since(t time.Time) time.Duration        { return time.Since(t) }
func (realClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}
