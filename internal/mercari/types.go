// Package mercari реализует работу с площадкой: вход в аккаунт, обход
// выставленных товаров и снижение цены по настроенной политике.
package mercari

import "fmt"

// ListingSummary — один товар, как он виден в списке выставленных.
// Создаётся заново при каждом разборе строки списка и не изменяется.
type ListingSummary struct {
	ID          string
	URL         string
	Name        string
	Price       int // отображаемая полная цена, иены
	ViewCount   int
	IsSuspended bool // публикация приостановлена
}

// State — состояние сессии. Переходы только вперёд:
// NEW → WARMED_UP → LOGIN_STARTED → CHALLENGE_PENDING → AUTHENTICATED.
type State int

const (
	StateNew State = iota
	StateWarmedUp
	StateLoginStarted
	StateChallengePending
	StateAuthenticated
	StateLoginFailed
)

func (s State) String() string {
	switch s {
	case StateNew:
		return "new"
	case StateWarmedUp:
		return "warmed_up"
	case StateLoginStarted:
		return "login_started"
	case StateChallengePending:
		return "challenge_pending"
	case StateAuthenticated:
		return "authenticated"
	case StateLoginFailed:
		return "login_failed"
	default:
		return "unknown"
	}
}

// SkipReason — почему товар пропущен без изменения цены.
// Пропуск — штатный исход, а не ошибка.
type SkipReason int

const (
	SkipNone SkipReason = iota
	SkipSuspended
	SkipRecentUpdate
	SkipPriceThreshold
	SkipFavoriteCount
)

func (r SkipReason) String() string {
	switch r {
	case SkipNone:
		return "none"
	case SkipSuspended:
		return "suspended"
	case SkipRecentUpdate:
		return "recent_update"
	case SkipPriceThreshold:
		return "price_threshold"
	case SkipFavoriteCount:
		return "favorite_count"
	default:
		return "unknown"
	}
}

// ModifiedHourUnknown — нераспознанная строка относительного времени.
// Такой товар никогда не проходит проверку интервала.
const ModifiedHourUnknown = -1

// PreconditionError: цена в форме редактирования не совпала с расчётной.
// Значит, цена изменилась между чтением списка и открытием формы —
// дальнейшая обработка профиля прерывается.
type PreconditionError struct {
	Expected int
	Actual   int
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("цена изменилась во время перехода (ожидалось %d, в форме %d)", e.Expected, e.Actual)
}

// PostconditionError: после отправки формы на странице отображается не та
// цена, которая была записана.
type PostconditionError struct {
	Expected int
	Actual   int
}

func (e *PostconditionError) Error() string {
	return fmt.Sprintf("цена после редактирования не совпала (ожидалось %d, фактически %d)", e.Expected, e.Actual)
}
