package scoring

import (
	"strings"
	"testing"

	"github.com/smartystreets/goconvey/convey"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spigell/joblo/internal/jobs"
	"github.com/spigell/joblo/internal/resume"
)

func years(v float64) *float64 { return &v }

func TestScore(t *testing.T) {
	convey.Convey("Given a scorer with default weights", t, func() {
		scorer := NewScorer()

		profile := &resume.Profile{
			Skills:             []string{"Python", "Django", "JavaScript"},
			ExperienceYears:    years(4),
			PreferredLocations: []string{"Bangalore"},
		}

		convey.Convey("When the job asks for a skill subset in range and in a preferred city", func() {
			job := &jobs.Job{
				ID:         "job-1",
				Skills:     []string{"Python", "Django", "REST API"},
				Experience: "3-5 years",
				Location:   "Bangalore",
			}
			res := scorer.Score(profile, job)

			convey.Convey("Then sub-scores follow the weighting rules", func() {
				convey.So(res.Breakdown.Skill, convey.ShouldAlmostEqual, 26.6667, 0.001)
				convey.So(res.Breakdown.Experience, convey.ShouldEqual, 20.0)
				convey.So(res.Breakdown.Location, convey.ShouldEqual, 10.0)
				convey.So(res.Breakdown.RawSimilarity, convey.ShouldEqual, 0.0)
				convey.So(res.Score, convey.ShouldEqual, 56.67)
			})

			convey.Convey("Then matching and missing skills are disjoint", func() {
				convey.So(res.MatchingSkills, convey.ShouldResemble, []string{"Python", "Django"})
				convey.So(res.MissingSkills, convey.ShouldResemble, []string{"REST API"})
				convey.So(res.ExperienceMatch, convey.ShouldBeTrue)
				convey.So(res.LocationMatch, convey.ShouldBeTrue)
			})

			convey.Convey("Then reasoning lists the clauses in order", func() {
				convey.So(res.Reasoning, convey.ShouldEqual, strings.Join([]string{
					"Strong skill match with 2 relevant skills: Python, Django",
					"Missing skills: REST API",
					"Experience level aligns well with requirements",
					"Location preference matches (Bangalore)",
				}, " | "))
			})
		})

		convey.Convey("When every job skill is on the profile", func() {
			res := scorer.Score(profile, &jobs.Job{Skills: []string{"python", "DJANGO"}})

			convey.Convey("Then the skill score is full", func() {
				convey.So(res.Breakdown.Skill, convey.ShouldEqual, 40.0)
				convey.So(res.MissingSkills, convey.ShouldBeEmpty)
			})
		})

		convey.Convey("When the job lists no skills", func() {
			res := scorer.Score(profile, &jobs.Job{})

			convey.Convey("Then the skill score is zero without dividing by zero", func() {
				convey.So(res.Breakdown.Skill, convey.ShouldEqual, 0.0)
				convey.So(res.Reasoning, convey.ShouldStartWith, "Limited skill overlap with job requirements")
			})
		})

		convey.Convey("When the job is remote", func() {
			res := scorer.Score(&resume.Profile{}, &jobs.Job{Location: "Remote (India)"})

			convey.Convey("Then location matches regardless of preferences", func() {
				convey.So(res.LocationMatch, convey.ShouldBeTrue)
				convey.So(res.Breakdown.Location, convey.ShouldEqual, 10.0)
			})
		})

		convey.Convey("When the job location only contains the preferred city", func() {
			for _, location := range []string{"Bangalore560037", "BangaloreUrban", "bangalore"} {
				res := scorer.Score(profile, &jobs.Job{Location: location})

				convey.So(res.LocationMatch, convey.ShouldBeTrue)
				convey.So(res.Breakdown.Location, convey.ShouldEqual, 10.0)
			}
		})

		convey.Convey("When profile skills carry stray case and spacing", func() {
			res := scorer.Score(&resume.Profile{Skills: []string{" GO ", ""}}, &jobs.Job{Skills: []string{"Go", " "}})

			convey.Convey("Then they still match and blanks are ignored", func() {
				convey.So(res.MatchingSkills, convey.ShouldResemble, []string{"Go"})
				convey.So(res.MissingSkills, convey.ShouldBeEmpty)
			})
		})

		convey.Convey("When a preferred location is blank", func() {
			res := scorer.Score(&resume.Profile{PreferredLocations: []string{"  "}}, &jobs.Job{Location: "Chennai"})

			convey.Convey("Then it matches nothing", func() {
				convey.So(res.LocationMatch, convey.ShouldBeFalse)
			})
		})

		convey.Convey("When the job is elsewhere", func() {
			res := scorer.Score(profile, &jobs.Job{Location: "Chennai"})

			convey.Convey("Then relocation is mentioned", func() {
				convey.So(res.LocationMatch, convey.ShouldBeFalse)
				convey.So(res.Reasoning, convey.ShouldContainSubstring, "Location may require relocation or remote work")
			})
		})

		convey.Convey("When the experience text cannot be parsed", func() {
			res := scorer.Score(profile, &jobs.Job{Experience: "entry level"})

			convey.Convey("Then a flat experience score is used", func() {
				convey.So(res.Breakdown.Experience, convey.ShouldEqual, 10.0)
				convey.So(res.ExperienceMatch, convey.ShouldBeFalse)
				convey.So(res.Reasoning, convey.ShouldContainSubstring, "Experience level is acceptable for this role")
			})
		})

		convey.Convey("When the job lists many skills the profile lacks", func() {
			res := scorer.Score(profile, &jobs.Job{Skills: []string{"Go", "Rust", "Kafka", "gRPC", "Redis", "Helm", "Istio"}})

			convey.Convey("Then missing skills are capped", func() {
				convey.So(res.MissingSkills, convey.ShouldResemble, []string{"Go", "Rust", "Kafka", "gRPC", "Redis"})
				convey.So(res.Reasoning, convey.ShouldContainSubstring, "Missing skills: Go, Rust, Kafka |")
			})
		})

		convey.Convey("When the résumé text equals the job text", func() {
			job := &jobs.Job{Title: "Data Engineer", Description: "Spark pipelines on Airflow", Skills: []string{"Spark"}}
			res := scorer.Score(&resume.Profile{RawText: JobText(job)}, job)

			convey.Convey("Then the similarity contributes its full weight", func() {
				convey.So(res.Breakdown.RawSimilarity, convey.ShouldAlmostEqual, 1, 1e-9)
				convey.So(res.Breakdown.Similarity, convey.ShouldAlmostEqual, 30, 1e-6)
				convey.So(res.Reasoning, convey.ShouldEndWith, "Strong overall profile match based on job description")
			})
		})
	})
}

func TestScoreBounds(t *testing.T) {
	convey.Convey("Given a range of profiles and jobs", t, func() {
		scorer := NewScorer()
		profiles := []*resume.Profile{
			nil,
			{},
			{Skills: []string{"go"}, ExperienceYears: years(50), PreferredLocations: []string{"Pune"}, RawText: "go kubernetes pune"},
			{Skills: []string{"go", "kubernetes"}, ExperienceYears: years(0), RawText: "the and of"},
		}
		jobList := []*jobs.Job{
			{},
			{Skills: []string{"go", "kubernetes"}, Experience: "0-1 years", Location: "Pune / Remote", Title: "go kubernetes pune"},
			{Skills: []string{"GO", "go"}, Experience: "10+ years", Location: "Pune"},
		}

		convey.Convey("Then every score stays in [0,100] and skills never overlap", func() {
			for _, p := range profiles {
				for _, j := range jobList {
					res := scorer.Score(p, j)
					convey.So(res.Score, convey.ShouldBeBetweenOrEqual, 0.0, 100.0)

					missing := make(map[string]struct{})
					for _, s := range res.MissingSkills {
						missing[strings.ToLower(s)] = struct{}{}
					}
					for _, s := range res.MatchingSkills {
						_, clash := missing[strings.ToLower(s)]
						convey.So(clash, convey.ShouldBeFalse)
					}
				}
			}
		})
	})
}

func TestExperiencePoints(t *testing.T) {
	convey.Convey("Given experience requirements", t, func() {
		rangeReq := ParseRequirement("3-5 years")
		atLeast := ParseRequirement("5+ years")

		convey.Convey("Then requirements are parsed", func() {
			convey.So(rangeReq, convey.ShouldResemble, Requirement{Min: 3, Max: 5, Kind: RequirementRange})
			convey.So(ParseRequirement("2 to 4 Yrs"), convey.ShouldResemble, Requirement{Min: 2, Max: 4, Kind: RequirementRange})
			convey.So(ParseRequirement("10 - 15 years"), convey.ShouldResemble, Requirement{Min: 10, Max: 15, Kind: RequirementRange})
			convey.So(atLeast, convey.ShouldResemble, Requirement{Min: 5, Kind: RequirementAtLeast})
			convey.So(ParseRequirement("Fresher").Kind, convey.ShouldEqual, RequirementNone)
			convey.So(ParseRequirement("").Kind, convey.ShouldEqual, RequirementNone)
		})

		convey.Convey("Then a range rewards fit and penalises gaps", func() {
			convey.So(experiencePoints(rangeReq, 3), convey.ShouldEqual, 20.0)
			convey.So(experiencePoints(rangeReq, 4.5), convey.ShouldEqual, 20.0)
			convey.So(experiencePoints(rangeReq, 1), convey.ShouldEqual, 10.0)
			convey.So(experiencePoints(rangeReq, 0), convey.ShouldEqual, 5.0)
			convey.So(experiencePoints(rangeReq, 9), convey.ShouldEqual, 12.0)
			convey.So(experiencePoints(rangeReq, 20), convey.ShouldEqual, 10.0)
		})

		convey.Convey("Then a minimum requirement penalises only shortfall", func() {
			convey.So(experiencePoints(atLeast, 6), convey.ShouldEqual, 20.0)
			convey.So(experiencePoints(atLeast, 3), convey.ShouldEqual, 10.0)
			convey.So(experiencePoints(atLeast, 0), convey.ShouldEqual, 0.0)
		})

		convey.Convey("Then missing profile years count as zero", func() {
			res := NewScorer().Score(&resume.Profile{}, &jobs.Job{Experience: "5+ years"})
			convey.So(res.Breakdown.Experience, convey.ShouldEqual, 0.0)
			convey.So(res.Reasoning, convey.ShouldContainSubstring, "Experience level may not fully meet requirements")
		})
	})
}

func TestReasoningUsesRawSimilarity(t *testing.T) {
	convey.Convey("Given the overall fit clause", t, func() {
		job := &jobs.Job{}

		convey.Convey("Then thresholds apply to the unweighted cosine value", func() {
			convey.So(reasoning(nil, nil, 10, false, 0.6, job), convey.ShouldEndWith, "Strong overall profile match based on job description")
			convey.So(reasoning(nil, nil, 10, false, 0.4, job), convey.ShouldEndWith, "Moderate profile match with job requirements")

			// 0.2 weighs 6 points, which must not count as a strong match.
			low := reasoning(nil, nil, 10, false, 0.2, job)
			convey.So(low, convey.ShouldNotContainSubstring, "profile match")
		})

		convey.Convey("Then a location match without text is reported as not specified", func() {
			convey.So(reasoning(nil, nil, 20, true, 0, job), convey.ShouldContainSubstring, "Location preference matches (Not specified)")
		})
	})
}

func TestScoreAll(t *testing.T) {
	convey.Convey("Given jobs with tied and distinct scores", t, func() {
		profile := &resume.Profile{Skills: []string{"go"}}
		items := []*jobs.Job{
			{ID: "b", Skills: []string{"rust"}},
			{ID: "c", Skills: []string{"go"}},
			{ID: "a", Skills: []string{"rust"}},
		}
		scorer := NewScorer()

		convey.Convey("Then results are sorted by score with id tie break", func() {
			res := scorer.ScoreAll(profile, items, 0)
			convey.So(len(res), convey.ShouldEqual, 3)
			convey.So(res[0].JobID, convey.ShouldEqual, "c")
			convey.So(res[1].JobID, convey.ShouldEqual, "a")
			convey.So(res[2].JobID, convey.ShouldEqual, "b")
		})

		convey.Convey("Then topK truncates", func() {
			res := scorer.ScoreAll(profile, items, 2)
			convey.So(len(res), convey.ShouldEqual, 2)
			convey.So(res[1].JobID, convey.ShouldEqual, "a")
		})

		convey.Convey("Then an empty pool yields no results", func() {
			convey.So(scorer.ScoreAll(profile, nil, 5), convey.ShouldBeEmpty)
		})
	})
}

func TestCustomWeightsAndLogging(t *testing.T) {
	convey.Convey("Given a scorer with custom weights and an observed logger", t, func() {
		core, logs := observer.New(zapcore.DebugLevel)
		scorer := NewScorer(
			WithWeights(Weights{Skill: 50, Experience: 10, Location: 20, Similarity: 20}),
			WithLogger(zap.New(core)),
		)

		res := scorer.Score(
			&resume.Profile{Skills: []string{"go"}, ExperienceYears: years(2), PreferredLocations: []string{"Delhi"}, RawText: "the of and"},
			&jobs.Job{ID: "j", Skills: []string{"go"}, Experience: "1-3 years", Location: "New Delhi"},
		)

		convey.Convey("Then sub-scores are scaled by the weights", func() {
			convey.So(res.Breakdown.Skill, convey.ShouldEqual, 50.0)
			convey.So(res.Breakdown.Experience, convey.ShouldEqual, 10.0)
			convey.So(res.Breakdown.Location, convey.ShouldEqual, 20.0)
			convey.So(res.Score, convey.ShouldEqual, 80.0)
			convey.So(res.ExperienceMatch, convey.ShouldBeTrue)
		})

		convey.Convey("Then a degenerate similarity is logged and scored as zero", func() {
			convey.So(res.Breakdown.Similarity, convey.ShouldEqual, 0.0)
			convey.So(logs.FilterMessage("text similarity unavailable").Len(), convey.ShouldEqual, 1)
		})
	})
}
