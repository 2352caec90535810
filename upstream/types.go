package upstream

// ContractMatch is a single result from the contract name search
type ContractMatch struct {
	Name            string          `json:"name"`
	Address         string          `json:"address"`
	OpenSeaMetadata OpenSeaMetadata `json:"openSeaMetadata"`
}

// OpenSeaMetadata carries marketplace metadata attached to a search match
type OpenSeaMetadata struct {
	ImageURL string `json:"imageUrl"`
}

// searchContractsRequest is the name-search request body
type searchContractsRequest struct {
	Query    string `json:"query"`
	Filter   string `json:"filter"`
	Page     int    `json:"page"`
	PageSize int    `json:"pageSize"`
}

// searchContractsResponse is the name-search response envelope
type searchContractsResponse struct {
	Contracts []ContractMatch `json:"contracts"`
}

// ContractInfo holds the metadata recorded for a contract
type ContractInfo struct {
	Name        string `json:"name"`
	Symbol      string `json:"symbol"`
	TokenType   string `json:"tokenType"`
	TotalSupply string `json:"totalSupply"`
}

// ContractMetadataResponse is the contract-metadata lookup response
type ContractMetadataResponse struct {
	Address          string       `json:"address"`
	ContractMetadata ContractInfo `json:"contractMetadata"`
}

// NFTContract identifies the contract a token belongs to
type NFTContract struct {
	Address string `json:"address"`
	Name    string `json:"name"`
}

// NFTImage carries the image URL variants recorded for a token.
// Preference order when rendering: original, thumbnail, cached, raw.
type NFTImage struct {
	OriginalURL  string `json:"originalUrl"`
	ThumbnailURL string `json:"thumbnailUrl"`
	CachedURL    string `json:"cachedUrl"`
	RawURL       string `json:"rawUrl"`
}

// NFT is a single token record as returned by the listing and metadata endpoints
type NFT struct {
	Contract    NFTContract `json:"contract"`
	TokenID     string      `json:"tokenId"`
	TokenType   string      `json:"tokenType"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Image       NFTImage    `json:"image"`
}

// NFTPage is one page of a collection listing. An empty PageKey means the
// listing is exhausted.
type NFTPage struct {
	NFTs    []NFT  `json:"nfts"`
	PageKey string `json:"pageKey"`
}
