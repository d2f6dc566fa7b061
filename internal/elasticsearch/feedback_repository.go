package elasticsearch

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"chat-insight-backend/config"
	"chat-insight-backend/internal/dto"
	"chat-insight-backend/internal/model"
	"chat-insight-backend/internal/repository"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/typedapi/core/search"
	"github.com/elastic/go-elasticsearch/v8/typedapi/types"
	"github.com/elastic/go-elasticsearch/v8/typedapi/types/enums/operator"
	"github.com/elastic/go-elasticsearch/v8/typedapi/types/enums/sortorder"
	"github.com/rs/zerolog/log"
)

var searchFields = []string{"query", "answer", "rating_comment"}

type elasticsearchFeedbackRepository struct {
	esTypedClient *elasticsearch.TypedClient
	index         string
}

// NewElasticsearchFeedbackRepository returns a nil repository when Elasticsearch is disabled.
func NewElasticsearchFeedbackRepository(cfg *config.Config) (repository.FeedbackRepository, error) {
	if !cfg.Elasticsearch.Enabled {
		return nil, nil
	}
	typedClient, err := elasticsearch.NewTypedClient(clientConfig(cfg))
	if err != nil {
		log.Error().Err(err).Msg("Failed to create Typed Elasticsearch Client in Repository")
		return nil, err
	}

	return &elasticsearchFeedbackRepository{
		esTypedClient: typedClient,
		index:         cfg.Elasticsearch.FeedbackIndex,
	}, nil
}

func (r *elasticsearchFeedbackRepository) Search(ctx context.Context, req dto.FeedbackSearchRequest) (*dto.FeedbackSearchResponse, error) {
	from := (req.Page - 1) * req.Size
	order := sortorder.Desc
	if req.SortOrder == "asc" {
		order = sortorder.Asc
	}

	searchRequest := &search.Request{
		Query: buildFeedbackQuery(req),
		Size:  &req.Size,
		From:  &from,
		Sort: []types.SortCombinations{
			types.SortOptions{
				SortOptions: map[string]types.FieldSort{
					"created_at": {Order: &order},
				},
			},
		},
	}

	res, err := r.esTypedClient.Search().
		Index(r.index).
		Request(searchRequest).
		Do(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Error executing Elasticsearch search via TypedClient")
		return nil, fmt.Errorf("elasticsearch search failed: %w", err)
	}

	details := make([]model.FeedbackDetail, 0, len(res.Hits.Hits))
	for _, hit := range res.Hits.Hits {
		if hit.Source_ == nil {
			continue
		}
		var detail model.FeedbackDetail
		if err := json.Unmarshal(hit.Source_, &detail); err != nil {
			log.Error().Err(err).Msg("Error unmarshalling Elasticsearch hit source")
			continue
		}
		details = append(details, detail)
	}

	response := &dto.FeedbackSearchResponse{
		Feedback: details,
		Page:     req.Page,
		Size:     req.Size,
	}
	if res.Hits.Total != nil {
		response.TotalCount = res.Hits.Total.Value
	}

	log.Debug().Int64("total_hits", response.TotalCount).Int("returned_hits", len(details)).Msg("Elasticsearch search successful")
	return response, nil
}

func buildFeedbackQuery(req dto.FeedbackSearchRequest) *types.Query {
	startTimeStr := req.StartTime.Format(time.RFC3339)
	endTimeStr := req.EndTime.Format(time.RFC3339)

	filters := []types.Query{{
		Range: map[string]types.RangeQuery{
			"created_at": types.DateRangeQuery{
				Gte: &startTimeStr,
				Lte: &endTimeStr,
			},
		},
	}}

	if q := termsFilter("good_or_bad.keyword", req.Ratings); q != nil {
		filters = append(filters, *q)
	}
	if q := termsFilter("model.keyword", req.Models); q != nil {
		filters = append(filters, *q)
	}
	if q := termsFilter("user_name.keyword", req.Users); q != nil {
		filters = append(filters, *q)
	}

	boolQuery := &types.BoolQuery{Filter: filters}
	if req.Query != "" {
		boolQuery.Must = []types.Query{{
			MultiMatch: &types.MultiMatchQuery{
				Query:    req.Query,
				Fields:   searchFields,
				Operator: &operator.And,
			},
		}}
	}
	return &types.Query{Bool: boolQuery}
}

func termsFilter(field string, values []string) *types.Query {
	if len(values) == 0 {
		return nil
	}
	terms := make([]types.FieldValue, len(values))
	for i, v := range values {
		terms[i] = v
	}
	return &types.Query{
		Terms: &types.TermsQuery{
			TermsQuery: map[string]types.TermsQueryField{field: terms},
		},
	}
}
