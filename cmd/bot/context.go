package main

import (
	"fmt"

	"github.com/samber/do"
	tele "gopkg.in/telebot.v3"
)

func getContainer(c tele.Context) (*do.Injector, error) {
	contextValue := c.Get(contextContainer)
	if contextValue == nil {
		return nil, fmt.Errorf("container not found")
	}

	result, ok := contextValue.(*do.Injector)
	if !ok {
		return nil, fmt.Errorf("container not valid")
	}

	return result, nil
}

// getService resolves a dependency from the per-update container.
func getService[T any](c tele.Context) (T, error) {
	var zero T
	container, err := getContainer(c)
	if err != nil {
		return zero, err
	}

	return do.Invoke[T](container)
}
