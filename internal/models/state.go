package models

// UserState — позиция пользователя в диалоговом конечном автомате
// плюс накопленные за несколько шагов поля формы.
type UserState struct {
	UserID      int64                  `json:"user_id"`
	CurrentStep string                 `json:"current_step"`
	TempData    map[string]interface{} `json:"temp_data,omitempty"`
}

func (s *UserState) GetInt64(key string) int64 {
	if s == nil || s.TempData == nil {
		return 0
	}
	val, ok := s.TempData[key]
	if !ok {
		return 0
	}
	switch v := val.(type) {
	case int64:
		return v
	case float64:
		return int64(v)
	case int:
		return int64(v)
	default:
		return 0
	}
}

func (s *UserState) GetInt(key string) int {
	return int(s.GetInt64(key))
}

func (s *UserState) GetString(key string) string {
	if s == nil || s.TempData == nil {
		return ""
	}
	val, ok := s.TempData[key]
	if !ok {
		return ""
	}
	if str, ok := val.(string); ok {
		return str
	}
	return ""
}

// Step возвращает текущий шаг; nil-состояние трактуется как idle
// (пустая строка), чтобы guard-проверки не требовали отдельной ветки.
func (s *UserState) Step() string {
	if s == nil {
		return ""
	}
	return s.CurrentStep
}
