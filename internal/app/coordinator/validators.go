package coordinator

import (
	"fmt"

	"github.com/jsamuelsen11/go-mediate/internal/domain"
	"github.com/jsamuelsen11/go-mediate/internal/ports"
)

// createValidator checks that a create request carries an item and applies
// the definition's business rules to it. Runs in the validation pipeline
// stage, before the handler.
func createValidator[E Managed](def Definition[E]) ports.Validator {
	return ports.ValidatorFunc(func(instance any) error {
		req, ok := instance.(CreateRequest[E])
		if !ok {
			return fmt.Errorf("validating %s.create: unexpected request type %T", def.Name, instance)
		}

		var zero E
		if req.Item == zero {
			return &domain.ValidationError{Fields: map[string]string{"item": "is required"}}
		}
		if def.Validate != nil {
			return def.Validate(req.Item)
		}
		return nil
	})
}

// updateValidator checks identity, token, and item presence, then applies
// the definition's business rules.
func updateValidator[E Managed](def Definition[E]) ports.Validator {
	return ports.ValidatorFunc(func(instance any) error {
		req, ok := instance.(UpdateRequest[E])
		if !ok {
			return fmt.Errorf("validating %s.update: unexpected request type %T", def.Name, instance)
		}

		fields := make(map[string]string)
		if req.ID == "" {
			fields["id"] = "is required"
		}
		if req.Token == "" {
			fields["token"] = "is required"
		}
		var zero E
		if req.Item == zero {
			fields["item"] = "is required"
		}
		if len(fields) > 0 {
			return &domain.ValidationError{Fields: fields}
		}

		if def.Validate != nil {
			return def.Validate(req.Item)
		}
		return nil
	})
}

// deleteValidator requires an identifier, and a concurrency token unless
// the delete is hard.
func deleteValidator(instance any) error {
	req, ok := instance.(DeleteRequest)
	if !ok {
		return fmt.Errorf("validating delete: unexpected request type %T", instance)
	}

	fields := make(map[string]string)
	if req.ID == "" {
		fields["id"] = "is required"
	}
	if !req.Hard && req.Token == "" {
		fields["token"] = "is required"
	}
	if len(fields) > 0 {
		return &domain.ValidationError{Fields: fields}
	}
	return nil
}

// getValidator requires an identifier.
func getValidator(instance any) error {
	req, ok := instance.(GetRequest)
	if !ok {
		return fmt.Errorf("validating get: unexpected request type %T", instance)
	}
	if req.ID == "" {
		return &domain.ValidationError{Fields: map[string]string{"id": "is required"}}
	}
	return nil
}
