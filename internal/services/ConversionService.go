package services

import (
	"context"
	"fmt"
	json "github.com/goccy/go-json"
	"net/http"
	"translit/internal/models"
	"translit/internal/providers"
	"translit/internal/structures"
)

const ConversionsPath = "/api/conversions"

// ConversionsKey is the query key of the history list.
var ConversionsKey = models.NewQueryKey("conversions")

type ConversionServiceInterface interface {
	ListConversions(ctx context.Context) ([]models.Conversion, error)
	DeleteConversion(ctx context.Context, id int64) error
	ListLoader() models.Loader
}

type ConversionService struct {
	client       providers.ResourceClientInterface
	logger       providers.Logger
	metrics      providers.MetricsProviderInterface
	unauthorized string
}

// ListConversions returns the records in server order. A null body is an
// empty list.
func (cs *ConversionService) ListConversions(ctx context.Context) ([]models.Conversion, error) {
	data, err := cs.client.Request(ctx, ConversionsPath, nil)
	if err != nil {
		if cs.unauthorized == providers.UnauthorizedReturnNull && providers.IsHttpStatus(err, http.StatusUnauthorized) {
			cs.logger.Infof(providers.TypeQuery, "list conversions: unauthorized, using empty list")
			cs.metrics.SetRecordsTotal(0)
			return []models.Conversion{}, nil
		}
		return nil, err
	}

	var list []models.Conversion
	if err = json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("decoding conversions: %w", err)
	}
	if list == nil {
		list = []models.Conversion{}
	}
	if err = models.ValidateConversions(list); err != nil {
		return nil, err
	}

	cs.metrics.SetRecordsTotal(len(list))
	return list, nil
}

func (cs *ConversionService) DeleteConversion(ctx context.Context, id int64) error {
	if id <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidID, id)
	}
	_, err := cs.client.Request(ctx, fmt.Sprintf("%s/%d", ConversionsPath, id), &providers.RequestOptions{
		Method: http.MethodDelete,
	})
	return err
}

// ListLoader adapts ListConversions to the query store.
func (cs *ConversionService) ListLoader() models.Loader {
	key := ConversionsKey.String()
	return func(ctx context.Context) (any, error) {
		list, err := cs.ListConversions(ctx)
		if err != nil {
			cs.metrics.IncQueryFetches(key, providers.OutcomeError)
			cs.logger.Errorf(providers.TypeQuery, "fetch %s failed: %s", key, err)
			return nil, err
		}
		cs.metrics.IncQueryFetches(key, providers.OutcomeSuccess)
		cs.logger.Debugf(providers.TypeQuery, "fetch %s: %d records", key, len(list))
		return list, nil
	}
}

func NewConversionService(conf *structures.Config, client providers.ResourceClientInterface, logger providers.Logger, metrics providers.MetricsProviderInterface) ConversionServiceInterface {
	return &ConversionService{
		client:       client,
		logger:       logger,
		metrics:      metrics,
		unauthorized: conf.History.Unauthorized,
	}
}
