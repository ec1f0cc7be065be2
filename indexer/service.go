package indexer

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jinzhu/gorm"
)

type Service struct {
	engine     *gin.Engine
	indexer    *ChainIndexer
	listenAddr string
}

func NewService(listenAddr string, indexer *ChainIndexer) *Service {
	r := gin.New()
	r.Use(gin.Recovery())
	s := &Service{
		engine:     r,
		indexer:    indexer,
		listenAddr: listenAddr,
	}
	s.engine.POST("/getTallies", s.handleGetTallies)
	s.engine.POST("/getProposals", s.handleGetProposals)
	s.engine.POST("/getMembers", s.handleGetMembers)
	s.engine.POST("/getSeats", s.handleGetSeats)
	s.engine.POST("/getRewards", s.handleGetRewards)
	s.engine.POST("/getEvents", s.handleGetEvents)
	s.engine.POST("/getHumans", s.handleGetHumans)
	return s
}

func (s *Service) Handler() http.Handler {
	return s.engine
}

func (s *Service) Start() error {
	return s.engine.Run(s.listenAddr)
}

type PageReq struct {
	Page     int `json:"page"`
	PageSize int `json:"pageSize"`
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

func serverError(c *gin.Context, err error) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}

type TallyInfo struct {
	Tally Tally  `json:"tally"`
	Votes []Vote `json:"votes"`
}

type GetTalliesReq struct {
	TallyId  *uint64 `json:"tallyId"`
	Proposal *uint64 `json:"proposal"`
	PageReq
}

type GetTalliesResponse struct {
	Tallies []TallyInfo `json:"tallies"`
	Total   uint64      `json:"total"`
}

func (s *Service) tallyInfo(t Tally) (TallyInfo, error) {
	votes, err := s.indexer.getVotesByTally(t.Tally)
	if err != nil {
		return TallyInfo{}, err
	}
	if votes == nil {
		votes = []Vote{}
	}
	return TallyInfo{Tally: t, Votes: votes}, nil
}

func (s *Service) handleGetTallies(c *gin.Context) {
	var requestData GetTalliesReq
	if err := c.ShouldBindJSON(&requestData); err != nil {
		badRequest(c, err)
		return
	}
	response := GetTalliesResponse{Tallies: make([]TallyInfo, 0)}
	if requestData.TallyId != nil {
		t, err := s.indexer.getTally(*requestData.TallyId)
		if err != nil {
			serverError(c, err)
			return
		}
		info, err := s.tallyInfo(t)
		if err != nil {
			serverError(c, err)
			return
		}
		response.Tallies = append(response.Tallies, info)
		response.Total = 1
		c.JSON(http.StatusOK, response)
		return
	}
	tallies, total, err := s.indexer.getTallies(requestData.Proposal, requestData.Page, requestData.PageSize)
	if err != nil {
		serverError(c, err)
		return
	}
	response.Total = total
	for _, t := range tallies {
		info, err := s.tallyInfo(t)
		if err != nil {
			serverError(c, err)
			return
		}
		response.Tallies = append(response.Tallies, info)
	}
	c.JSON(http.StatusOK, response)
}

type ProposalInfo struct {
	Proposal     Proposal      `json:"proposal"`
	Transactions []Transaction `json:"transactions"`
}

type GetProposalsReq struct {
	ProposalId *uint64 `json:"proposalId"`
	PageReq
}

type GetProposalsResponse struct {
	Proposals []ProposalInfo `json:"proposals"`
	Total     uint64         `json:"total"`
}

func (s *Service) proposalInfo(p Proposal) (ProposalInfo, error) {
	txs, err := s.indexer.getTransactionsByProposal(p.Proposal)
	if err != nil {
		return ProposalInfo{}, err
	}
	if txs == nil {
		txs = []Transaction{}
	}
	return ProposalInfo{Proposal: p, Transactions: txs}, nil
}

func (s *Service) handleGetProposals(c *gin.Context) {
	var requestData GetProposalsReq
	if err := c.ShouldBindJSON(&requestData); err != nil {
		badRequest(c, err)
		return
	}
	response := GetProposalsResponse{Proposals: make([]ProposalInfo, 0)}
	if requestData.ProposalId != nil {
		p, err := s.indexer.getProposal(*requestData.ProposalId)
		if err != nil {
			serverError(c, err)
			return
		}
		info, err := s.proposalInfo(p)
		if err != nil {
			serverError(c, err)
			return
		}
		response.Proposals = append(response.Proposals, info)
		response.Total = 1
		c.JSON(http.StatusOK, response)
		return
	}
	proposals, total, err := s.indexer.getProposals(requestData.Page, requestData.PageSize)
	if err != nil {
		serverError(c, err)
		return
	}
	response.Total = total
	for _, p := range proposals {
		info, err := s.proposalInfo(p)
		if err != nil {
			serverError(c, err)
			return
		}
		response.Proposals = append(response.Proposals, info)
	}
	c.JSON(http.StatusOK, response)
}

type GetMembersReq struct {
	Address string `json:"address"`
	Role    *uint8 `json:"role"`
	PageReq
}

type GetMembersResponse struct {
	Members []Member `json:"members"`
	Total   uint64   `json:"total"`
}

func (s *Service) handleGetMembers(c *gin.Context) {
	var requestData GetMembersReq
	if err := c.ShouldBindJSON(&requestData); err != nil {
		badRequest(c, err)
		return
	}
	response := GetMembersResponse{Members: make([]Member, 0)}
	if requestData.Address != "" {
		m, err := s.indexer.getMember(requestData.Address)
		if err != nil {
			serverError(c, err)
			return
		}
		response.Members = append(response.Members, m)
		response.Total = 1
		c.JSON(http.StatusOK, response)
		return
	}
	members, total, err := s.indexer.getMembers(requestData.Role, requestData.Page, requestData.PageSize)
	if err != nil {
		serverError(c, err)
		return
	}
	response.Members = append(response.Members, members...)
	response.Total = total
	c.JSON(http.StatusOK, response)
}

type GetSeatsResponse struct {
	Seats []Seat `json:"seats"`
}

func (s *Service) handleGetSeats(c *gin.Context) {
	seats, err := s.indexer.getSeats()
	if err != nil {
		serverError(c, err)
		return
	}
	response := GetSeatsResponse{Seats: make([]Seat, 0, len(seats))}
	response.Seats = append(response.Seats, seats...)
	c.JSON(http.StatusOK, response)
}

type GetRewardsReq struct {
	Address string `json:"address"`
	PageReq
}

type GetRewardsResponse struct {
	Rewards []Reward `json:"rewards"`
	Total   uint64   `json:"total"`
}

func (s *Service) handleGetRewards(c *gin.Context) {
	var requestData GetRewardsReq
	if err := c.ShouldBindJSON(&requestData); err != nil {
		badRequest(c, err)
		return
	}
	rewards, total, err := s.indexer.getRewards(requestData.Address, requestData.Page, requestData.PageSize)
	if err != nil {
		serverError(c, err)
		return
	}
	response := GetRewardsResponse{Rewards: make([]Reward, 0, len(rewards)), Total: total}
	response.Rewards = append(response.Rewards, rewards...)
	c.JSON(http.StatusOK, response)
}

type GetEventsReq struct {
	Type   string `json:"type"`
	Height uint64 `json:"height"`
	PageReq
}

type GetEventsResponse struct {
	Events []EventRecord `json:"events"`
	Total  uint64        `json:"total"`
}

func (s *Service) handleGetEvents(c *gin.Context) {
	var requestData GetEventsReq
	if err := c.ShouldBindJSON(&requestData); err != nil {
		badRequest(c, err)
		return
	}
	events, total, err := s.indexer.getEvents(requestData.Type, requestData.Height, requestData.Page, requestData.PageSize)
	if err != nil {
		serverError(c, err)
		return
	}
	response := GetEventsResponse{Events: make([]EventRecord, 0, len(events)), Total: total}
	response.Events = append(response.Events, events...)
	c.JSON(http.StatusOK, response)
}

type GetHumansReq struct {
	PageReq
}

type GetHumansResponse struct {
	Humans []string `json:"humans"`
	Total  uint64   `json:"total"`
}

func (s *Service) handleGetHumans(c *gin.Context) {
	var requestData GetHumansReq
	if err := c.ShouldBindJSON(&requestData); err != nil {
		badRequest(c, err)
		return
	}
	humans, total, err := s.indexer.getHumans(requestData.Page, requestData.PageSize)
	if err != nil {
		serverError(c, err)
		return
	}
	c.JSON(http.StatusOK, GetHumansResponse{Humans: humans, Total: total})
}
