package indexer

import (
	"github.com/jinzhu/gorm"
)

const maxPageSize = 1000

func paginate(db *gorm.DB, page int, pageSize int) *gorm.DB {
	if page < 0 {
		page = 0
	}
	if pageSize <= 0 || pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return db.Offset(page * pageSize).Limit(pageSize)
}

func (c *ChainIndexer) getTallies(proposal *uint64, page int, pageSize int) ([]Tally, uint64, error) {
	q := c.db.Model(&Tally{})
	if proposal != nil {
		q = q.Where("proposal = ?", *proposal)
	}
	var total uint64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var tallies []Tally
	if err := paginate(q.Order("tally desc"), page, pageSize).Find(&tallies).Error; err != nil {
		return nil, 0, err
	}
	return tallies, total, nil
}

func (c *ChainIndexer) getTally(id uint64) (Tally, error) {
	var t Tally
	err := c.db.Where("tally = ?", id).First(&t).Error
	return t, err
}

func (c *ChainIndexer) getVotesByTally(tally uint64) ([]Vote, error) {
	var votes []Vote
	err := c.db.Where("tally = ?", tally).Order("id asc").Find(&votes).Error
	return votes, err
}

func (c *ChainIndexer) getProposals(page int, pageSize int) ([]Proposal, uint64, error) {
	var total uint64
	if err := c.db.Model(&Proposal{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var proposals []Proposal
	if err := paginate(c.db.Order("proposal desc"), page, pageSize).Find(&proposals).Error; err != nil {
		return nil, 0, err
	}
	return proposals, total, nil
}

func (c *ChainIndexer) getProposal(id uint64) (Proposal, error) {
	var p Proposal
	err := c.db.Where("proposal = ?", id).First(&p).Error
	return p, err
}

func (c *ChainIndexer) getTransactionsByProposal(proposal uint64) ([]Transaction, error) {
	var txs []Transaction
	err := c.db.Where("proposal = ?", proposal).Order("step asc, tx_id asc").Find(&txs).Error
	return txs, err
}

func (c *ChainIndexer) getMembers(role *uint8, page int, pageSize int) ([]Member, uint64, error) {
	q := c.db.Model(&Member{})
	if role != nil {
		q = q.Where("role = ?", *role)
	}
	var total uint64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var members []Member
	if err := paginate(q.Order("address asc"), page, pageSize).Find(&members).Error; err != nil {
		return nil, 0, err
	}
	return members, total, nil
}

func (c *ChainIndexer) getMember(address string) (Member, error) {
	var m Member
	err := c.db.Where("address = ?", address).First(&m).Error
	return m, err
}

func (c *ChainIndexer) getSeats() ([]Seat, error) {
	var seats []Seat
	err := c.db.Order("seat asc").Find(&seats).Error
	return seats, err
}

func (c *ChainIndexer) getRewards(address string, page int, pageSize int) ([]Reward, uint64, error) {
	q := c.db.Model(&Reward{})
	if address != "" {
		q = q.Where("address = ?", address)
	}
	var total uint64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rewards []Reward
	if err := paginate(q.Order("id desc"), page, pageSize).Find(&rewards).Error; err != nil {
		return nil, 0, err
	}
	return rewards, total, nil
}

func (c *ChainIndexer) getEvents(eventType string, height uint64, page int, pageSize int) ([]EventRecord, uint64, error) {
	q := c.db.Model(&EventRecord{})
	if eventType != "" {
		q = q.Where("type = ?", eventType)
	}
	if height != 0 {
		q = q.Where("height = ?", height)
	}
	var total uint64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var events []EventRecord
	if err := paginate(q.Order("height asc, tx_index asc, event_index asc"), page, pageSize).Find(&events).Error; err != nil {
		return nil, 0, err
	}
	return events, total, nil
}

// getHumans pages through registered humans in address order so that
// consecutive pages never overlap.
func (c *ChainIndexer) getHumans(page int, pageSize int) ([]string, uint64, error) {
	var total uint64
	if err := c.db.Model(&Human{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var humans []Human
	if err := paginate(c.db.Order("address asc"), page, pageSize).Find(&humans).Error; err != nil {
		return nil, 0, err
	}
	addrs := make([]string, len(humans))
	for i, h := range humans {
		addrs[i] = h.Address
	}
	return addrs, total, nil
}
