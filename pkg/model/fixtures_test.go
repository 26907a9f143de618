package model_test

import (
	"context"
	"strings"

	id "modelkit/pkg/domain"
	dErrors "modelkit/pkg/domain-errors"
	"modelkit/pkg/event"
	"modelkit/pkg/model"
)

// Shared test domain: an Order aggregate and an Email value object.

type orderItem struct {
	SKU      string  `validate:"required"`
	Price    float64 `validate:"required,gt=0"`
	Quantity int     `validate:"required,gt=0"`
}

type orderProps struct {
	Status string      `validate:"required,oneof=draft pending confirmed shipped"`
	Items  []orderItem `validate:"dive"`
	Total  float64     `validate:"gte=0"`
}

type addItemInput struct {
	SKU      string
	Price    float64
	Quantity int
}

func addItem(_ context.Context, input addItemInput, props orderProps, current model.AggregateRoot[orderProps], correlation id.CorrelationID) (orderProps, []event.DomainEvent, error) {
	if input.Quantity <= 0 || input.Price <= 0 {
		return orderProps{}, nil, dErrors.NewInvariantViolation("item price and quantity must be positive")
	}

	next := props
	next.Items = append(append([]orderItem(nil), props.Items...), orderItem{
		SKU:      input.SKU,
		Price:    input.Price,
		Quantity: input.Quantity,
	})
	next.Total = props.Total + input.Price*float64(input.Quantity)

	evt := event.New(event.NewParams{
		Name:          "OrderItemAdded",
		Payload:       input,
		CorrelationID: correlation,
		Aggregate:     current,
	})
	return next, []event.DomainEvent{evt}, nil
}

func confirmOrder(_ context.Context, _ struct{}, props orderProps, current model.AggregateRoot[orderProps], correlation id.CorrelationID) (orderProps, []event.DomainEvent, error) {
	if props.Status != "pending" {
		return orderProps{}, nil, dErrors.NewInvariantViolation("only pending orders can be confirmed")
	}

	next := props
	next.Status = "confirmed"
	evt := event.New(event.NewParams{
		Name:          "OrderConfirmed",
		CorrelationID: correlation,
		Aggregate:     current,
	})
	return next, []event.DomainEvent{evt}, nil
}

func orderTrait() *model.AggregateRootTrait[orderProps] {
	trait, err := model.NewAggregateRoot[orderProps]("Order").
		WithSchema(model.Struct[orderProps]()).
		WithInvariant(func(p orderProps) bool { return p.Total >= 0 }, "total must not be negative").
		WithQuery("itemCount", func(p orderProps) any { return len(p.Items) }).
		Build()
	if err != nil {
		panic(err)
	}
	return trait
}

type emailProps struct {
	Value string
}

func emailTrait() *model.ValueObjectTrait[emailProps] {
	trait, err := model.NewValueObject[emailProps]("Email").
		WithNew(func(ctx context.Context, raw any, parse model.PropsParser[emailProps]) (emailProps, error) {
			s, ok := raw.(string)
			if !ok {
				return emailProps{}, dErrors.Newf(dErrors.CodeInvalidInput, "expected string, got %T", raw)
			}
			return parse(ctx, emailProps{Value: strings.ToLower(strings.TrimSpace(s))})
		}).
		WithInvariant(func(p emailProps) bool { return strings.Count(p.Value, "@") == 1 }, "value must contain exactly one '@'").
		WithQuery("getDomain", func(p emailProps) any {
			return p.Value[strings.IndexByte(p.Value, '@')+1:]
		}).
		Build()
	if err != nil {
		panic(err)
	}
	return trait
}
