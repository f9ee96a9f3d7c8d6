package services

import "net/http"

// Error carries the HTTP status a validation failure should map to, so
// handlers can return it without re-classifying.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string { return e.Message }

func newError(status int, message string) *Error {
	return &Error{Status: status, Message: message}
}

// User-facing messages match the production system, which serves a
// Vietnamese audience.
var (
	ErrPastBooking       = newError(http.StatusBadRequest, "Không thể đặt lịch hẹn trong quá khứ")
	ErrDailyConflict     = newError(http.StatusBadRequest, "Bạn đã có lịch hẹn trong ngày này")
	ErrFacilityFull      = newError(http.StatusBadRequest, "Cơ sở đã đủ lịch hẹn trong ngày này")
	ErrDuplicateShift    = newError(http.StatusBadRequest, "Bạn đã đăng ký ca này rồi")
	ErrShiftFull         = newError(http.StatusBadRequest, "Ca làm việc này đã đủ bác sĩ")
	ErrShiftStarted      = newError(http.StatusBadRequest, "Ca làm việc đã bắt đầu, không thể hủy")
	ErrOutsideShift      = newError(http.StatusForbidden, "Lịch hẹn nằm ngoài ca làm việc của bạn")
	ErrVaccineOutOfStock = newError(http.StatusBadRequest, "Vắc xin đã hết hàng")
)
