package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/adventureapp/adventure-api/internal/core/domain"
	"github.com/adventureapp/adventure-api/internal/core/ports"
	"github.com/adventureapp/adventure-api/internal/pkg/sanitize"
)

const (
	defaultMaxLevels = 10
	defaultMinWords  = 100
	defaultMaxWords  = 200

	clonePrefix = "(copy) "
)

// adminChecker is the slice of the auth service the engine needs for
// ownership resolution.
type adminChecker interface {
	IsAdmin(ctx context.Context, actorID string) bool
}

// AdventureService drives the story-tree lifecycle: creation, branching
// continuation, truncation, cloning and deletion.
type AdventureService struct {
	repo       ports.AdventureRepository
	guard      *ownershipGuard
	stories    ports.StoryGenerator
	covers     *coverPipeline
	genTimeout time.Duration
	logger     zerolog.Logger
}

func NewAdventureService(
	repo ports.AdventureRepository,
	auth adminChecker,
	stories ports.StoryGenerator,
	covers *coverPipeline,
	genTimeout time.Duration,
	logger zerolog.Logger,
) *AdventureService {
	return &AdventureService{
		repo:       repo,
		guard:      &ownershipGuard{repo: repo, auth: auth},
		stories:    stories,
		covers:     covers,
		genTimeout: genTimeout,
		logger:     logger,
	}
}

// Start generates the opening of a new adventure and persists it with its
// first node. When a cover image is requested, generation and upload happen
// before anything is written, so a failure leaves no partial record behind.
func (s *AdventureService) Start(ctx context.Context, in ports.StartAdventureInput) (*ports.StartAdventureResult, error) {
	prompt, err := sanitize.Prompt(in.Prompt)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidParameter, err)
	}

	if in.Perspective == "" {
		in.Perspective = domain.SecondPerson
	}
	if !domain.ValidPerspective(in.Perspective) {
		return nil, fmt.Errorf("%w: unknown perspective %q", domain.ErrInvalidParameter, in.Perspective)
	}
	if in.MaxLevels <= 0 {
		in.MaxLevels = defaultMaxLevels
	}
	if in.MinWordsPerLevel <= 0 {
		in.MinWordsPerLevel = defaultMinWords
	}
	if in.MaxWordsPerLevel <= 0 {
		in.MaxWordsPerLevel = defaultMaxWords
	}
	if in.MinWordsPerLevel > in.MaxWordsPerLevel {
		return nil, fmt.Errorf("%w: min_words_per_level exceeds max_words_per_level", domain.ErrInvalidParameter)
	}

	genCtx, cancel := s.generatorContext(ctx)
	defer cancel()

	story, err := s.stories.NewStory(genCtx, newStoryMessages(prompt, in.Perspective, in.MinWordsPerLevel, in.MaxWordsPerLevel))
	if err != nil {
		return nil, wrapGeneratorErr("new story", err)
	}

	text, err := sanitize.StoryContent(story.Text)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidParameter, err)
	}

	var bucket, key string
	if in.WithCoverImage {
		bucket, key, err = s.covers.generateAndStore(ctx, prompt)
		if err != nil {
			return nil, err
		}
	}

	now := time.Now().UTC()
	adventure := &domain.Adventure{
		OwnerID:          in.OwnerID,
		Title:            story.Title,
		Synopsis:         story.Synopsis,
		UserPrompt:       prompt,
		CreatedAt:        now,
		Perspective:      in.Perspective,
		MaxLevels:        in.MaxLevels,
		MinWordsPerLevel: in.MinWordsPerLevel,
		MaxWordsPerLevel: in.MaxWordsPerLevel,
		ImageBucket:      bucket,
		ImageKey:         key,
		Nodes: []domain.Node{{
			CreatedAt: now,
			Text:      text,
			Options:   story.Options,
		}},
	}

	id, err := s.repo.Insert(ctx, adventure)
	if err != nil {
		return nil, err
	}

	result := &ports.StartAdventureResult{
		AdventureID: id,
		Title:       adventure.Title,
		Synopsis:    adventure.Synopsis,
		CreatedAt:   now,
	}
	if adventure.HasCoverImage() {
		url, err := s.covers.presign(ctx, bucket, key)
		if err != nil {
			return nil, err
		}
		result.CoverImageURL = url
	}

	s.logger.Info().Str("adventure_id", id).Str("owner_id", in.OwnerID).Msg("adventure started")
	return result, nil
}

// Continue appends the next node of the story. The append is conditional on
// the node count observed during validation, so two racing continuations
// cannot both land.
func (s *AdventureService) Continue(ctx context.Context, in ports.ContinueAdventureInput) (*ports.ContinueAdventureResult, error) {
	if in.Outcome == "" {
		in.Outcome = domain.OutcomeContinue
	}
	if !domain.ValidOutcome(in.Outcome) {
		return nil, fmt.Errorf("%w: unknown outcome %q", domain.ErrInvalidParameter, in.Outcome)
	}

	adventure, err := s.getForRead(ctx, in.AdventureID, in.Principal)
	if err != nil {
		return nil, err
	}

	if in.StartFromNode < 0 || in.StartFromNode >= len(adventure.Nodes) {
		return nil, fmt.Errorf("%w: node %d", domain.ErrNodeIndexOutOfRange, in.StartFromNode)
	}
	options := adventure.Nodes[in.StartFromNode].Options
	if in.SelectedOption < 0 || in.SelectedOption >= len(options) {
		return nil, fmt.Errorf("%w: option %d", domain.ErrOptionIndexOutOfRange, in.SelectedOption)
	}
	selectedText := options[in.SelectedOption]

	genCtx, cancel := s.generatorContext(ctx)
	defer cancel()

	generated, err := s.stories.NextNode(genCtx, continuationMessages(adventure, selectedText, in.Outcome))
	if err != nil {
		return nil, wrapGeneratorErr("next node", err)
	}

	text, err := sanitize.StoryContent(generated.Text)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidParameter, err)
	}

	optionIndex := in.SelectedOption
	node := domain.Node{
		CreatedAt:       time.Now().UTC(),
		PrevOptionIndex: &optionIndex,
		PrevOptionText:  selectedText,
		Text:            text,
		Options:         generated.Options,
	}
	if in.Outcome == domain.OutcomeFinish {
		node.Options = []string{}
	}

	if err := s.repo.AppendNode(ctx, in.AdventureID, len(adventure.Nodes), node); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("adventure_id", in.AdventureID).
		Int("node_index", len(adventure.Nodes)).
		Str("outcome", string(in.Outcome)).
		Msg("node appended")

	return &ports.ContinueAdventureResult{
		AdventureID: in.AdventureID,
		NodeIndex:   len(adventure.Nodes),
	}, nil
}

// Truncate rewinds the story: nodes at and after nodeIndex are discarded
// permanently.
func (s *AdventureService) Truncate(ctx context.Context, adventureID string, p domain.Principal, nodeIndex int) error {
	if nodeIndex < 0 {
		return fmt.Errorf("%w: node_index must not be negative", domain.ErrInvalidParameter)
	}

	if _, err := s.getForMutate(ctx, adventureID, p); err != nil {
		return err
	}

	if err := s.repo.TruncateNodes(ctx, adventureID, nodeIndex); err != nil {
		return err
	}

	s.logger.Info().Str("adventure_id", adventureID).Int("node_index", nodeIndex).Msg("adventure truncated")
	return nil
}

func (s *AdventureService) Delete(ctx context.Context, adventureID string, p domain.Principal) error {
	if _, err := s.getForMutate(ctx, adventureID, p); err != nil {
		return err
	}

	existed, err := s.repo.Delete(ctx, adventureID)
	if err != nil {
		return err
	}
	if !existed {
		return domain.ErrAdventureNotFound
	}

	s.logger.Info().Str("adventure_id", adventureID).Msg("adventure deleted")
	return nil
}

// Clone deep-copies an adventure the principal can read into a new record
// owned by the acting identity. Nodes are written one by one; a crash
// mid-copy can leave a partial clone (no multi-document transaction).
func (s *AdventureService) Clone(ctx context.Context, adventureID string, p domain.Principal) (*ports.CloneAdventureResult, error) {
	source, err := s.getForRead(ctx, adventureID, p)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	clone := &domain.Adventure{
		OwnerID:          p.ActorID(),
		Title:            clonePrefix + source.Title,
		Synopsis:         source.Synopsis,
		UserPrompt:       source.UserPrompt,
		CreatedAt:        now,
		Perspective:      source.Perspective,
		MaxLevels:        source.MaxLevels,
		MinWordsPerLevel: source.MinWordsPerLevel,
		MaxWordsPerLevel: source.MaxWordsPerLevel,
		ImageBucket:      source.ImageBucket,
		ImageKey:         source.ImageKey,
		CloneOf:          source.ID,
		Nodes:            []domain.Node{},
	}

	id, err := s.repo.Insert(ctx, clone)
	if err != nil {
		return nil, err
	}

	for i, node := range source.Nodes {
		copied := node
		copied.CreatedAt = time.Now().UTC()
		if node.PrevOptionIndex != nil {
			idx := *node.PrevOptionIndex
			copied.PrevOptionIndex = &idx
		}
		copied.Options = append([]string(nil), node.Options...)
		if err := s.repo.AppendNode(ctx, id, i, copied); err != nil {
			return nil, fmt.Errorf("clone node %d: %w", i, err)
		}
	}

	s.logger.Info().Str("adventure_id", id).Str("clone_of", source.ID).Msg("adventure cloned")

	return &ports.CloneAdventureResult{
		AdventureID: id,
		Title:       clone.Title,
		Synopsis:    clone.Synopsis,
		CreatedAt:   now,
		CloneOf:     source.ID,
	}, nil
}

// List returns summaries of every adventure the owner can see: their own
// plus public ones. Node bodies are omitted.
func (s *AdventureService) List(ctx context.Context, ownerID string) ([]ports.AdventureSummary, error) {
	adventures, err := s.repo.ListVisible(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	summaries := make([]ports.AdventureSummary, 0, len(adventures))
	for _, a := range adventures {
		summaries = append(summaries, ports.AdventureSummary{
			AdventureID:      a.ID,
			Title:            a.Title,
			Synopsis:         a.Synopsis,
			CreatedAt:        a.CreatedAt,
			Perspective:      a.Perspective,
			MaxLevels:        a.MaxLevels,
			MinWordsPerLevel: a.MinWordsPerLevel,
			MaxWordsPerLevel: a.MaxWordsPerLevel,
			NumNodes:         len(a.Nodes),
		})
	}
	return summaries, nil
}

func (s *AdventureService) GetNodes(ctx context.Context, adventureID string, p domain.Principal) (*domain.Adventure, error) {
	return s.getForRead(ctx, adventureID, p)
}

func (s *AdventureService) getForRead(ctx context.Context, adventureID string, p domain.Principal) (*domain.Adventure, error) {
	return s.guard.forRead(ctx, adventureID, p)
}

func (s *AdventureService) getForMutate(ctx context.Context, adventureID string, p domain.Principal) (*domain.Adventure, error) {
	return s.guard.forMutate(ctx, adventureID, p)
}

func (s *AdventureService) generatorContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.genTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.genTimeout)
}

func wrapGeneratorErr(op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s: %v", domain.ErrGeneratorTimeout, op, err)
	}
	return fmt.Errorf("%w: %s: %v", domain.ErrGeneratorFailure, op, err)
}

func newStoryMessages(prompt string, perspective domain.Perspective, minWords, maxWords int) []ports.Message {
	instructions := fmt.Sprintf(`Create an english language choose-your-own-adventure style novel based on the info provided by the user.
The story is told in %s perspective.
You will return these pieces of information:
- Title of Story (maximum 5 words)
- Synopsis of Story (maximum 200 words)
- Text of the first chapter of the story, between %d and %d words in length.
- an array of 2-3 choices for the user to take after reading the text of the first chapter.`, perspective, minWords, maxWords)

	return []ports.Message{
		{Role: ports.RoleDeveloper, Content: instructions},
		{Role: ports.RoleUser, Content: prompt},
	}
}

func continuationMessages(a *domain.Adventure, selectedOption string, outcome domain.Outcome) []ports.Message {
	var continuation, optionInstructions string
	switch outcome {
	case domain.OutcomeFinish:
		continuation = "Text for the final chapter of the story, with a positive ending for the protagonist."
		optionInstructions = "an empty array in the options field"
	case domain.OutcomeDead:
		continuation = "Text for the final chapter of the story, in which the protagonist dies."
		optionInstructions = "an array in the options field"
	default:
		continuation = "Text of the next chapter of the story"
		optionInstructions = "an array of 2-3 choices for the user to take after reading the text of the chapter."
	}

	messages := []ports.Message{{
		Role: ports.RoleDeveloper,
		Content: fmt.Sprintf(`You are creating a choose-your-own-adventure story based on the user's instructions.
The title of the story is: %s
The perspective of the story is: %s
The synopsis of the story is:
%s`, a.Title, a.Perspective, a.Synopsis),
	}}

	for _, node := range a.Nodes {
		messages = append(messages, ports.Message{Role: ports.RoleAssistant, Content: node.Text})
	}

	messages = append(messages, ports.Message{
		Role: ports.RoleDeveloper,
		Content: fmt.Sprintf(`return these pieces of information:
- %s - between %d and %d words in length.
- %s`, continuation, a.MinWordsPerLevel, a.MaxWordsPerLevel, optionInstructions),
	})

	messages = append(messages, ports.Message{Role: ports.RoleUser, Content: selectedOption})
	return messages
}
