// Package controllers содержит общую дисциплину запуска операций
// контроллеров экранов: защиту от повторной отправки и защиту от
// устаревших ответов.
package controllers

import (
	"errors"
	"sync"
)

// ErrBusy возвращается, когда операция контроллера уже выполняется.
// Повторная отправка не ставится в очередь, а игнорируется — это
// защита от двойного списания и двойной записи расхода.
var ErrBusy = errors.New("operation already in progress")

// Runner — защёлка одиночной операции контроллера.
//
// Begin отклоняет вызов при незавершённой операции и выдаёт номер эпохи.
// Ответ, пришедший после Invalidate (уход с экрана), считается устаревшим:
// Valid для его эпохи вернёт false и результат должен быть отброшен.
type Runner struct {
	mu      sync.Mutex
	pending bool
	epoch   uint64
}

// Begin начинает операцию. Возвращает текущую эпоху или ErrBusy.
func (r *Runner) Begin() (uint64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.pending {
		return 0, ErrBusy
	}
	r.pending = true
	return r.epoch, nil
}

// Done завершает операцию, снимая флаг занятости.
func (r *Runner) Done() {
	r.mu.Lock()
	r.pending = false
	r.mu.Unlock()
}

// Pending сообщает, выполняется ли операция сейчас.
func (r *Runner) Pending() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pending
}

// Valid сообщает, актуальна ли эпоха: не было ли ухода с экрана
// с момента Begin.
func (r *Runner) Valid(epoch uint64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.epoch == epoch
}

// Invalidate отмечает контроллер неактивным: все выданные ранее
// эпохи становятся недействительными.
func (r *Runner) Invalidate() {
	r.mu.Lock()
	r.epoch++
	r.mu.Unlock()
}
