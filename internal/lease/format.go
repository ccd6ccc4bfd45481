package lease

import (
	"fmt"
	"strings"
)

// Format renders an Error as the message shown to users.
func Format(e *Error) string {
	if e == nil {
		return ""
	}
	switch e.Kind {
	case KindInvalidRange:
		return "Не указан диапазон времени аренды"
	case KindInvalidTime:
		return fmt.Sprintf("Некорректное время аренды: %s", e.Value)
	case KindWorkHourLimitExceeded:
		return slavePrefix(e) + fmt.Sprintf("не может работать больше %d часов", e.Limit)
	case KindSlaveBusy:
		quoted := make([]string, len(e.Hours))
		for i, h := range e.Hours {
			quoted[i] = `"` + h.String() + `"`
		}
		return slavePrefix(e) + "занят. Занятые часы: " + strings.Join(quoted, ", ")
	case KindNotFound:
		if e.Entity == "master" {
			return fmt.Sprintf("Ошибка. Хозяин #%d не найден", e.EntityID)
		}
		return fmt.Sprintf("Ошибка. Раб #%d не найден", e.EntityID)
	default:
		return fmt.Sprintf("Ошибка аренды: %s", e.Kind)
	}
}

func slavePrefix(e *Error) string {
	return fmt.Sprintf("Ошибка. Раб #%d \"%s\" ", e.SlaveID, e.SlaveName)
}
