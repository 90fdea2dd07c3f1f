package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
)

func newValidator() (*validator.Validate, ut.Translator, error) {
	validate := validator.New()

	enLocale := en.New()
	uni := ut.New(enLocale, enLocale)
	trans, _ := uni.GetTranslator("en")
	if err := enTranslations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, nil, fmt.Errorf("failed to register default translations: %w", err)
	}

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("mapstructure"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	if err := validate.RegisterValidation("file", isFileReadable); err != nil {
		return nil, nil, fmt.Errorf("failed to register file validation: %w", err)
	}
	if err := validate.RegisterTranslation("file", trans, func(ut ut.Translator) error {
		return ut.Add("file", "{0} must be an existing and readable file", true)
	}, func(ut ut.Translator, fe validator.FieldError) string {
		t, _ := ut.T("file", strings.TrimPrefix(fe.Namespace(), "Config."))
		return t
	}); err != nil {
		return nil, nil, fmt.Errorf("failed to register file translation: %w", err)
	}

	validate.RegisterStructValidation(validateProviderCredentials, Config{})

	return validate, trans, nil
}

// validateProviderCredentials requires the credentials of the selected provider only
func validateProviderCredentials(sl validator.StructLevel) {
	cfg := sl.Current().Interface().(Config)

	switch cfg.Analyzer.Provider {
	case ProviderOpenAI:
		if cfg.OpenAI.APIKey == "" {
			sl.ReportError(cfg.OpenAI.APIKey, "openai.api_key", "APIKey", "required", "")
		}
	case ProviderGenAI:
		switch cfg.GenAI.Backend {
		case "gemini":
			if cfg.GenAI.APIKey == "" {
				sl.ReportError(cfg.GenAI.APIKey, "genai.api_key", "APIKey", "required", "")
			}
		case "vertex":
			if cfg.GenAI.Project == "" {
				sl.ReportError(cfg.GenAI.Project, "genai.project", "Project", "required", "")
			}
			if cfg.GenAI.Location == "" {
				sl.ReportError(cfg.GenAI.Location, "genai.location", "Location", "required", "")
			}
		}
	}
}

// Validate checks the configuration and returns every problem in one error
func (cfg *Config) Validate() error {
	validate, trans, err := newValidator()
	if err != nil {
		return fmt.Errorf("newValidator() > %w", err)
	}

	if err := validate.Struct(cfg); err != nil {
		var validationErrors validator.ValidationErrors
		if !errors.As(err, &validationErrors) {
			return fmt.Errorf("validate.Struct() > %w", err)
		}

		messages := make([]string, 0, len(validationErrors))
		for _, fieldErr := range validationErrors {
			messages = append(messages, fieldErr.Translate(trans))
		}
		return fmt.Errorf("invalid configuration: %s", strings.Join(messages, "; "))
	}
	return nil
}

func isFileReadable(fl validator.FieldLevel) bool {
	path := fl.Field().String()
	if path == "" {
		return false
	}

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return false
	}
	if info.IsDir() {
		return false
	}

	// Check if the owner has read permission
	return info.Mode().Perm()&(1<<(uint(7))) != 0
}
