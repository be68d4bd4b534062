package helpers

import (
	"fmt"
	"reflect"
	"strconv"
	"time"

	"github.com/medbridge/backend/models"
	"github.com/thedevsaddam/govalidator"
)

func init() {
	govalidator.AddCustomRule("date_ISO8601", func(field string, rule string, message string, value interface{}) error {
		dateLayoutISO8601 := "2006-01-02"
		rv := reflect.ValueOf(value)
		if rv.Kind() == reflect.String {
			date := value.(string)
			if _, err := time.Parse(dateLayoutISO8601, date); err != nil {
				if message != "" {
					return fmt.Errorf(message)
				}
				return fmt.Errorf("The %s field must be ISO8601 yyyy-mm-dd date ", field)
			}
		}
		return nil
	})
	govalidator.AddCustomRule("positive_int", func(field string, rule string, message string, value interface{}) error {
		var n int64
		rv := reflect.ValueOf(value)
		switch rv.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			n = rv.Int()
		case reflect.Float32, reflect.Float64:
			n = int64(rv.Float())
		case reflect.String:
			n, _ = strconv.ParseInt(rv.String(), 10, 64)
		}
		if n <= 0 {
			if message != "" {
				return fmt.Errorf(message)
			}
			return fmt.Errorf("The %s field must be a positive integer", field)
		}
		return nil
	})
	govalidator.AddCustomRule("non_negative", func(field string, rule string, message string, value interface{}) error {
		var n float64
		rv := reflect.ValueOf(value)
		switch rv.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			n = float64(rv.Int())
		case reflect.Float32, reflect.Float64:
			n = rv.Float()
		case reflect.String:
			n, _ = strconv.ParseFloat(rv.String(), 64)
		}
		if n < 0 {
			if message != "" {
				return fmt.Errorf(message)
			}
			return fmt.Errorf("The %s field must not be negative", field)
		}
		return nil
	})
	govalidator.AddCustomRule("speciality", func(field string, rule string, message string, value interface{}) error {
		speciality, ok := value.(string)
		if !ok {
			return fmt.Errorf("The %s field must be a string", field)
		}
		for _, s := range models.Specialities {
			if s == speciality {
				return nil
			}
		}
		if message != "" {
			return fmt.Errorf(message)
		}
		return fmt.Errorf("The %s field must be one of the offered specialities", field)
	})
}
