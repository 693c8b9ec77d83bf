package entity

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Константы правил начисления очков
const (
	// BasePoints — базовые очки за правильный ответ.
	BasePoints = 1000
	// SpeedBonusMax — максимальный бонус за мгновенный ответ.
	SpeedBonusMax = 500
)

// StringArray - пользовательский тип для работы с JSONB
type StringArray []string

// Scan реализует интерфейс sql.Scanner для StringArray
// Используется GORM для чтения JSONB данных из базы
func (o *StringArray) Scan(value interface{}) error {
	// Обработка NULL значений из базы данных
	if value == nil {
		*o = StringArray{}
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("failed to unmarshal JSONB value: expected []byte")
	}

	if len(bytes) == 0 {
		*o = StringArray{}
		return nil
	}

	return json.Unmarshal(bytes, o)
}

// Value реализует интерфейс driver.Valuer для StringArray
// Используется GORM для записи StringArray в JSONB в базе
func (o StringArray) Value() (driver.Value, error) {
	if o == nil || len(o) == 0 {
		return []byte("[]"), nil // Возвращаем пустой JSON массив вместо null
	}
	return json.Marshal(o)
}

// Question представляет вопрос викторины
type Question struct {
	ID                 string      `gorm:"type:uuid;primaryKey" json:"id"`
	QuizID             uint        `gorm:"not null;index;uniqueIndex:idx_quiz_order" json:"quiz_id"`
	QuestionText       string      `gorm:"size:500;not null" json:"question_text"`
	Options            StringArray `gorm:"type:jsonb;not null" json:"options"`
	CorrectOptionIndex int         `gorm:"not null" json:"-"` // Скрыто от клиента
	TimerSeconds       int         `gorm:"not null;default:15" json:"timer_seconds"`
	OrderIndex         int         `gorm:"not null;uniqueIndex:idx_quiz_order" json:"order_index"`
	CreatedAt          time.Time   `json:"created_at"`
	UpdatedAt          time.Time   `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (Question) TableName() string {
	return "quiz_questions"
}

// BeforeCreate генерирует UUID для вопроса, если он не задан
func (q *Question) BeforeCreate(tx *gorm.DB) error {
	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	return nil
}

// IsCorrect проверяет, является ли выбранный вариант правильным
func (q *Question) IsCorrect(chosenIndex int) bool {
	return chosenIndex == q.CorrectOptionIndex
}

// IsValidOption проверяет, является ли выбранный вариант допустимым
func (q *Question) IsValidOption(chosenIndex int) bool {
	return chosenIndex >= 0 && chosenIndex < len(q.Options)
}

// OptionsCount возвращает количество вариантов ответа
func (q *Question) OptionsCount() int {
	return len(q.Options)
}

// TimeFactor возвращает коэффициент скорости ответа в диапазоне [0, 1].
// Ответ на границе лимита или позже дает 0, мгновенный ответ дает 1.
func (q *Question) TimeFactor(responseTimeMs int64) float64 {
	timerLimitMs := int64(q.TimerSeconds) * 1000
	if timerLimitMs <= 0 {
		return 0
	}
	factor := float64(timerLimitMs-responseTimeMs) / float64(timerLimitMs)
	if factor < 0 {
		return 0
	}
	if factor > 1 {
		return 1
	}
	return factor
}

// CalculatePoints рассчитывает очки за ответ: BasePoints плюс бонус за скорость
// для правильного ответа, 0 за неправильный. responseTimeMs сообщается клиентом.
func (q *Question) CalculatePoints(chosenIndex int, responseTimeMs int64) int {
	if !q.IsCorrect(chosenIndex) {
		return 0
	}
	return int(BasePoints + q.TimeFactor(responseTimeMs)*SpeedBonusMax)
}
