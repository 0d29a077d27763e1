package validations

import (
	"context"

	domainRecipe "github.com/savora/savora/domains/recipe"
	pkgError "github.com/savora/savora/pkg/error"
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

func ValidateGenerateRecipe(ctx context.Context, request domainRecipe.GenerateRequest) error {
	err := validation.ValidateStructWithContext(ctx, &request,
		validation.Field(&request.Prompt, validation.Required, validation.Length(1, 2000)),
	)

	if err != nil {
		return pkgError.ValidationError(err.Error())
	}

	return nil
}

func ValidateSearch(ctx context.Context, query string) error {
	err := validation.Validate(query, validation.Required, validation.Length(1, 500))

	if err != nil {
		return pkgError.ValidationError("q: " + err.Error() + ".")
	}

	return nil
}

func ValidateRecipeID(ctx context.Context, id string) error {
	err := validation.Validate(id, validation.Required)

	if err != nil {
		return pkgError.ValidationError("id: " + err.Error() + ".")
	}

	return nil
}
