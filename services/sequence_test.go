package services

import (
	"sync"
	"testing"

	"taxroad-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllocateSequential(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db)
	allocator := NewSequenceAllocator(db)

	for i := 1; i <= 5; i++ {
		number, err := allocator.Allocate(user.ID, models.SequenceInvoices)
		require.NoError(t, err)
		assert.Equal(t, FormatDocumentNumber("INV", i), number)
	}
}

func TestAllocateIndependentSequences(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db)
	allocator := NewSequenceAllocator(db)

	inv, err := allocator.Allocate(user.ID, models.SequenceInvoices)
	require.NoError(t, err)
	rec, err := allocator.Allocate(user.ID, models.SequenceReceipts)
	require.NoError(t, err)

	assert.Equal(t, "INV-0001", inv)
	assert.Equal(t, "REC-0001", rec)
}

func TestAllocateIndependentUsers(t *testing.T) {
	db := newTestDB(t)
	userA := createTestUser(t, db)
	userB := createTestUser(t, db)
	allocator := NewSequenceAllocator(db)

	a1, err := allocator.Allocate(userA.ID, models.SequenceInvoices)
	require.NoError(t, err)
	b1, err := allocator.Allocate(userB.ID, models.SequenceInvoices)
	require.NoError(t, err)

	assert.Equal(t, "INV-0001", a1)
	assert.Equal(t, "INV-0001", b1)
}

func TestAllocateConcurrent(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db)
	allocator := NewSequenceAllocator(db)

	const workers = 20
	numbers := make(chan string, workers)
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			number, err := allocator.Allocate(user.ID, models.SequenceReceipts)
			if err == nil {
				numbers <- number
			}
		}()
	}
	wg.Wait()
	close(numbers)

	seen := make(map[string]bool)
	for number := range numbers {
		assert.False(t, seen[number], "duplicate number %s", number)
		seen[number] = true
	}
	assert.NotEmpty(t, seen)
}

func TestAllocateUnknownSequence(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db)
	allocator := NewSequenceAllocator(db)

	_, err := allocator.Allocate(user.ID, "quotations")
	assert.Error(t, err)
}

func TestFormatDocumentNumber(t *testing.T) {
	assert.Equal(t, "INV-0001", FormatDocumentNumber("INV", 1))
	assert.Equal(t, "REC-0042", FormatDocumentNumber("REC", 42))
	assert.Equal(t, "INV-12345", FormatDocumentNumber("INV", 12345))
}
