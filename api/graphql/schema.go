package graphql

import (
	"errors"
	"fmt"

	"github.com/graphql-go/graphql"
	"go.uber.org/zap"

	"github.com/0xvlm/nftsearch-go/search"
)

// Schema holds the GraphQL schema
type Schema struct {
	schema  graphql.Schema
	service *search.Service
	logger  *zap.Logger
}

var collectionType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Collection",
	Fields: graphql.Fields{
		"address":     &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"displayName": &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
	},
})

var suggestionType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Suggestion",
	Fields: graphql.Fields{
		"name":     &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"address":  &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"imageUrl": &graphql.Field{Type: graphql.String},
	},
})

var tokenType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Token",
	Fields: graphql.Fields{
		"contractAddress": &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"tokenId":         &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"title":           &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"description":     &graphql.Field{Type: graphql.String},
		"imageUrl":        &graphql.Field{Type: graphql.String},
	},
})

var tokenPageType = graphql.NewObject(graphql.ObjectConfig{
	Name: "TokenPage",
	Fields: graphql.Fields{
		"items":   &graphql.Field{Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(tokenType)))},
		"pageKey": &graphql.Field{Type: graphql.String},
	},
})

var sessionType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Session",
	Fields: graphql.Fields{
		"sessionId":  &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"collection": &graphql.Field{Type: collectionType},
		"items":      &graphql.Field{Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(tokenType)))},
		"pageKey":    &graphql.Field{Type: graphql.String},
		"exhausted":  &graphql.Field{Type: graphql.NewNonNull(graphql.Boolean)},
		"notFound":   &graphql.Field{Type: graphql.NewNonNull(graphql.Boolean)},
		"inFlight":   &graphql.Field{Type: graphql.NewNonNull(graphql.Boolean)},
	},
})

// NewSchema creates a new GraphQL schema
func NewSchema(service *search.Service, logger *zap.Logger) (*Schema, error) {
	s := &Schema{
		service: service,
		logger:  logger,
	}

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"searchCollections": &graphql.Field{
				Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(suggestionType))),
				Args: graphql.FieldConfigArgument{
					"query": &graphql.ArgumentConfig{
						Type: graphql.NewNonNull(graphql.String),
					},
					"limit": &graphql.ArgumentConfig{
						Type: graphql.Int,
					},
				},
				Resolve: s.resolveSearchCollections,
			},
			"collection": &graphql.Field{
				Type: collectionType,
				Args: graphql.FieldConfigArgument{
					"query": &graphql.ArgumentConfig{
						Type: graphql.NewNonNull(graphql.String),
					},
				},
				Resolve: s.resolveCollection,
			},
			"tokens": &graphql.Field{
				Type: graphql.NewNonNull(tokenPageType),
				Args: graphql.FieldConfigArgument{
					"contract": &graphql.ArgumentConfig{
						Type: graphql.NewNonNull(graphql.String),
					},
					"pageKey": &graphql.ArgumentConfig{
						Type: graphql.String,
					},
					"limit": &graphql.ArgumentConfig{
						Type: graphql.Int,
					},
				},
				Resolve: s.resolveTokens,
			},
			"token": &graphql.Field{
				Type: tokenType,
				Args: graphql.FieldConfigArgument{
					"contract": &graphql.ArgumentConfig{
						Type: graphql.NewNonNull(graphql.String),
					},
					"tokenId": &graphql.ArgumentConfig{
						Type: graphql.NewNonNull(graphql.String),
					},
				},
				Resolve: s.resolveToken,
			},
			"session": &graphql.Field{
				Type: sessionType,
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{
						Type: graphql.NewNonNull(graphql.String),
					},
				},
				Resolve: s.resolveSession,
			},
		},
	})

	schema, err := graphql.NewSchema(graphql.SchemaConfig{
		Query: queryType,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	s.schema = schema
	return s, nil
}

func (s *Schema) resolveSearchCollections(p graphql.ResolveParams) (interface{}, error) {
	query, _ := p.Args["query"].(string)
	limit, _ := p.Args["limit"].(int)

	matches, err := s.service.SearchContracts(p.Context, query, limit)
	if err != nil {
		return nil, err
	}

	out := make([]map[string]interface{}, 0, len(matches))
	for _, m := range matches {
		out = append(out, map[string]interface{}{
			"name":     m.Name,
			"address":  m.Address,
			"imageUrl": m.OpenSeaMetadata.ImageURL,
		})
	}
	return out, nil
}

func (s *Schema) resolveCollection(p graphql.ResolveParams) (interface{}, error) {
	query, _ := p.Args["query"].(string)

	resolved, err := s.service.Collection(p.Context, query)
	if errors.Is(err, search.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return map[string]interface{}{
		"address":     resolved.Address,
		"displayName": resolved.DisplayName,
	}, nil
}

func (s *Schema) resolveTokens(p graphql.ResolveParams) (interface{}, error) {
	contract, _ := p.Args["contract"].(string)
	pageKey, _ := p.Args["pageKey"].(string)
	limit, _ := p.Args["limit"].(int)

	items, nextKey, err := s.service.Tokens(p.Context, contract, pageKey, limit)
	if err != nil {
		return nil, err
	}

	return map[string]interface{}{
		"items":   mapTokens(items),
		"pageKey": nextKey,
	}, nil
}

func (s *Schema) resolveToken(p graphql.ResolveParams) (interface{}, error) {
	contract, _ := p.Args["contract"].(string)
	tokenID, _ := p.Args["tokenId"].(string)

	item, err := s.service.Token(p.Context, contract, tokenID)
	if err != nil {
		return nil, err
	}
	return mapToken(item), nil
}

func (s *Schema) resolveSession(p graphql.ResolveParams) (interface{}, error) {
	id, _ := p.Args["id"].(string)

	snap, err := s.service.SessionSnapshot(id)
	if errors.Is(err, search.ErrSessionNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return map[string]interface{}{
		"sessionId": snap.SessionID,
		"collection": map[string]interface{}{
			"address":     snap.Collection.Address,
			"displayName": snap.Collection.DisplayName,
		},
		"items":     mapTokens(snap.Items),
		"pageKey":   snap.PageKey,
		"exhausted": snap.Exhausted,
		"notFound":  snap.NotFound,
		"inFlight":  snap.InFlight,
	}, nil
}

func mapTokens(items []search.TokenItem) []map[string]interface{} {
	out := make([]map[string]interface{}, 0, len(items))
	for _, item := range items {
		out = append(out, mapToken(item))
	}
	return out
}

func mapToken(item search.TokenItem) map[string]interface{} {
	return map[string]interface{}{
		"contractAddress": item.ContractAddress,
		"tokenId":         item.TokenID,
		"title":           item.Title,
		"description":     item.Description,
		"imageUrl":        item.ImageURL,
	}
}
